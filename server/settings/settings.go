// Package settings persists the two user preferences the frontend needs
// across sessions: the theme and the download folder. The backing file is
// plain JSON and stays human-editable.
package settings

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

type Settings struct {
	Theme          Theme  `json:"theme"`
	DownloadFolder string `json:"download_folder"`
}

// Default returns the settings used when no file exists yet:
// dark theme, downloads into the current working directory.
func Default() Settings {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	return Settings{
		Theme:          ThemeDark,
		DownloadFolder: cwd,
	}
}

// Store reads and writes a Settings record at a fixed path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the settings file. Preferences are non-critical, so any
// failure (missing file, unreadable file, malformed JSON) silently
// yields the defaults instead of an error. Unknown keys are ignored.
func (s *Store) Load() Settings {
	defaults := Default()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return defaults
	}

	loaded := defaults
	if err := json.Unmarshal(data, &loaded); err != nil {
		return defaults
	}

	return normalize(loaded, defaults)
}

// Save writes the settings record, replacing the file atomically: the
// record is written to a temp file in the same directory and renamed
// over the target, so an interrupted write never leaves a torn file.
func (s *Store) Save(st Settings) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Join(errors.New("failed to encode settings"), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".settings-*.json")
	if err != nil {
		return errors.Join(errors.New("failed to persist settings"), err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Join(errors.New("failed to persist settings"), err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Join(errors.New("failed to persist settings"), err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Join(errors.New("failed to persist settings"), err)
	}

	return nil
}

func normalize(st, defaults Settings) Settings {
	if st.Theme != ThemeDark && st.Theme != ThemeLight {
		st.Theme = defaults.Theme
	}
	if st.DownloadFolder == "" {
		st.DownloadFolder = defaults.DownloadFolder
	}
	return st
}
