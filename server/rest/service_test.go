package rest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ytdesk/ytdesk/server/history"
	"github.com/ytdesk/ytdesk/server/internal/runner"
	"github.com/ytdesk/ytdesk/server/internal/store"
	"github.com/ytdesk/ytdesk/server/presets"
	"github.com/ytdesk/ytdesk/server/settings"
)

// fakeDownloader writes a shell script standing in for yt-dlp.
func fakeDownloader(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fake-dlp")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	return path
}

func newService(t *testing.T, downloader string) (*Service, *store.Store) {
	t.Helper()

	dir := t.TempDir()

	db, err := bolt.Open(filepath.Join(dir, "bolt.db"), 0600, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	presetStore, err := presets.NewStore(db)
	if err != nil {
		t.Fatal(err)
	}

	historyRepo, err := history.New(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { historyRepo.Close() })

	mdb := store.New()

	svc := NewService(&ContainerArgs{
		Settings: settings.NewStore(filepath.Join(dir, "settings.json")),
		Runner:   runner.New(downloader, nil),
		Store:    mdb,
		Presets:  presetStore,
		History:  historyRepo,
	})

	return svc, mdb
}

func settleRun(t *testing.T, mdb *store.Store, id string) {
	t.Helper()

	h, err := mdb.Get(id)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := h.Wait(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestExecValidatesRequest(t *testing.T) {
	svc, mdb := newService(t, fakeDownloader(t, "true"))

	_, err := svc.Exec(runner.DownloadRequest{Mode: runner.ModeVideo, URL: "https://example.com/v"})

	var verr *runner.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(mdb.Keys()) != 0 {
		t.Error("no handle should be registered for an invalid request")
	}
}

func TestExecRelaysAndRecordsHistory(t *testing.T) {
	svc, mdb := newService(t, fakeDownloader(t, "echo fetching; echo done"))

	id, err := svc.Exec(runner.DownloadRequest{Mode: runner.ModeAudio, URL: "https://example.com/v"})
	if err != nil {
		t.Fatalf("exec failed: %v", err)
	}

	settleRun(t, mdb, id)

	lines, err := svc.PollOutput(id, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 || lines[0].Text != "fetching" || lines[1].Text != "done" {
		t.Errorf("unexpected output lines: %+v", lines)
	}

	snap, err := svc.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Status != runner.StatusSucceeded {
		t.Errorf("expected %q, got %q", runner.StatusSucceeded, snap.Status)
	}

	// history append runs on its own goroutine after completion
	deadline := time.Now().Add(time.Second * 5)
	for {
		entries, err := svc.History(context.Background(), 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) == 1 {
			if entries[0].URL != "https://example.com/v" || entries[0].Mode != "audio" {
				t.Errorf("unexpected history entry: %+v", entries[0])
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("history entry never appeared")
		}
		time.Sleep(time.Millisecond * 20)
	}
}

func TestExecRejectsConcurrentDownload(t *testing.T) {
	svc, mdb := newService(t, fakeDownloader(t, "sleep 30"))

	id, err := svc.Exec(runner.DownloadRequest{Mode: runner.ModeAudio, URL: "https://example.com/a"})
	if err != nil {
		t.Fatalf("first exec failed: %v", err)
	}

	_, err = svc.Exec(runner.DownloadRequest{Mode: runner.ModeAudio, URL: "https://example.com/b"})
	if !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	if err := svc.Cancel(id); err != nil {
		t.Fatal(err)
	}
	settleRun(t, mdb, id)

	// a terminal run no longer blocks new ones
	next, err := svc.ListFormats("https://example.com/c")
	if err != nil {
		t.Fatalf("exec after completion should succeed, got %v", err)
	}
	if err := svc.Cancel(next); err != nil {
		t.Fatal(err)
	}
	settleRun(t, mdb, next)
}

func TestExecFillsDestinationFromSettings(t *testing.T) {
	downloader := fakeDownloader(t, "true")
	svc, mdb := newService(t, downloader)

	if _, err := svc.UpdateSettings(settings.Settings{
		Theme:          settings.ThemeDark,
		DownloadFolder: "/tmp/media library",
	}); err != nil {
		t.Fatal(err)
	}

	id, err := svc.Exec(runner.DownloadRequest{Mode: runner.ModeAudio, URL: "https://example.com/v"})
	if err != nil {
		t.Fatal(err)
	}
	settleRun(t, mdb, id)

	snap, err := svc.Get(id)
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, arg := range snap.Params {
		if arg == "/tmp/media library/%(title)s.%(ext)s" {
			found = true
		}
	}
	if !found {
		t.Errorf("output template should use the persisted folder, got %v", snap.Params)
	}
}

func TestGetUnknownRun(t *testing.T) {
	svc, _ := newService(t, fakeDownloader(t, "true"))

	if _, err := svc.Get("missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
