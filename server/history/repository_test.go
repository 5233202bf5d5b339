package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()

	repo, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

func TestAppendAndList(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	older := &Entry{
		URL:       "https://example.com/a",
		Mode:      "audio",
		ExitCode:  0,
		Status:    "succeeded",
		CreatedAt: time.Now().Add(-time.Hour),
	}
	newer := &Entry{
		URL:      "https://example.com/b",
		Mode:     "video",
		Format:   "bestvideo+bestaudio",
		ExitCode: 1,
		Status:   "failed",
	}

	if err := repo.Append(ctx, older); err != nil {
		t.Fatal(err)
	}
	if err := repo.Append(ctx, newer); err != nil {
		t.Fatal(err)
	}

	if older.Id == "" || newer.Id == "" {
		t.Error("append should assign ids")
	}

	entries, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].URL != newer.URL {
		t.Errorf("expected newest entry first, got %q", entries[0].URL)
	}
	if entries[1].ExitCode != 0 || entries[0].ExitCode != 1 {
		t.Error("exit codes did not survive the round trip")
	}
}

func TestListHonorsLimit(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		e := &Entry{URL: "https://example.com/v", Mode: "audio", Status: "succeeded"}
		if err := repo.Append(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := repo.List(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 entries, got %d", len(entries))
	}
}

func TestClear(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	if err := repo.Append(ctx, &Entry{URL: "u", Mode: "audio", Status: "succeeded"}); err != nil {
		t.Fatal(err)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatal(err)
	}

	entries, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty history, got %d entries", len(entries))
	}
}
