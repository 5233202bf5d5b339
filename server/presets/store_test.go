package presets

import (
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"

	"github.com/ytdesk/ytdesk/server/internal/runner"
)

func newStore(t *testing.T) *Store {
	t.Helper()

	db, err := bolt.Open(filepath.Join(t.TempDir(), "bolt.db"), 0600, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	s, err := NewStore(db)
	if err != nil {
		t.Fatal(err)
	}

	return s
}

func TestSaveAssignsId(t *testing.T) {
	s := newStore(t)

	p := &Preset{Name: "music", Mode: runner.ModeAudio}
	if err := s.Save(p); err != nil {
		t.Fatal(err)
	}

	if p.Id == "" {
		t.Error("save should assign an id")
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	s := newStore(t)

	want := &Preset{
		Name:     "archive quality",
		Mode:     runner.ModeVideo,
		Format:   "bestvideo[height<=1080]+bestaudio",
		Filename: "%(uploader)s - %(title)s",
	}
	if err := s.Save(want); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(want.Id)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *want {
		t.Errorf("round trip mismatch: want %+v, got %+v", want, got)
	}
}

func TestGetMissing(t *testing.T) {
	s := newStore(t)

	if _, err := s.Get("missing"); err == nil {
		t.Error("expected an error for an unknown preset")
	}
}

func TestListAndDelete(t *testing.T) {
	s := newStore(t)

	a := &Preset{Name: "a", Mode: runner.ModeAudio}
	b := &Preset{Name: "b", Mode: runner.ModeVideo, Format: "best"}
	if err := s.Save(a); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(b); err != nil {
		t.Fatal(err)
	}

	all, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(all))
	}

	if err := s.Delete(a.Id); err != nil {
		t.Fatal(err)
	}

	all, err = s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Id != b.Id {
		t.Errorf("expected only %q to remain, got %+v", b.Name, all)
	}
}
