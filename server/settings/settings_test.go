package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.json"))

	got := store.Load()

	if got.Theme != ThemeDark {
		t.Errorf("expected default theme %q, got %q", ThemeDark, got.Theme)
	}

	cwd, _ := os.Getwd()
	if got.DownloadFolder != cwd {
		t.Errorf("expected default folder %q, got %q", cwd, got.DownloadFolder)
	}
}

func TestLoadMalformedFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	got := NewStore(path).Load()

	if got.Theme != ThemeDark {
		t.Errorf("expected default theme on malformed file, got %q", got.Theme)
	}
}

func TestLoadEmptyFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	got := NewStore(path).Load()

	if got != Default() {
		t.Errorf("expected defaults on empty file, got %+v", got)
	}
}

func TestRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.json"))

	want := Settings{
		Theme:          ThemeLight,
		DownloadFolder: "/home/user/My Videos/with spaces",
	}

	if err := store.Save(want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if got := store.Load(); got != want {
		t.Errorf("round trip mismatch: want %+v, got %+v", want, got)
	}
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	raw := `{"theme":"light","download_folder":"/tmp","legacy_option":42}`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	got := NewStore(path).Load()

	if got.Theme != ThemeLight || got.DownloadFolder != "/tmp" {
		t.Errorf("unexpected settings: %+v", got)
	}
}

func TestLoadNormalizesUnknownTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	raw := `{"theme":"solarized","download_folder":"/tmp"}`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	got := NewStore(path).Load()

	if got.Theme != ThemeDark {
		t.Errorf("unknown theme should fall back to %q, got %q", ThemeDark, got.Theme)
	}
}

func TestSaveUnwritableDestination(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing", "nested", "settings.json"))

	if err := store.Save(Default()); err == nil {
		t.Error("expected an error saving into a nonexistent directory")
	}
}

func TestSaveOverwritesPrevious(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.json"))

	first := Settings{Theme: ThemeDark, DownloadFolder: "/tmp/a"}
	second := Settings{Theme: ThemeLight, DownloadFolder: "/tmp/b"}

	if err := store.Save(first); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(second); err != nil {
		t.Fatal(err)
	}

	if got := store.Load(); got != second {
		t.Errorf("expected %+v after overwrite, got %+v", second, got)
	}
}
