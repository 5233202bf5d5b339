// Package history records every finished download so the frontend can
// show past runs across restarts.
package history

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id         TEXT PRIMARY KEY,
	url        TEXT NOT NULL,
	mode       TEXT NOT NULL,
	format     TEXT NOT NULL DEFAULT '',
	path       TEXT NOT NULL DEFAULT '',
	exit_code  INTEGER NOT NULL,
	status     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS history_created_at ON history (created_at);
`

type Entry struct {
	Id        string    `json:"id"`
	URL       string    `json:"url"`
	Mode      string    `json:"mode"`
	Format    string    `json:"format,omitempty"`
	Path      string    `json:"path,omitempty"`
	ExitCode  int       `json:"exit_code"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository struct {
	db *sql.DB
}

func New(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Join(errors.New("failed to open history database"), err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Join(errors.New("failed to init history schema"), err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Append(ctx context.Context, e *Entry) error {
	if e.Id == "" {
		e.Id = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO history (id, url, mode, format, path, exit_code, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Id, e.URL, e.Mode, e.Format, e.Path, e.ExitCode, e.Status, e.CreatedAt,
	)

	return err
}

// List returns the most recent entries, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, url, mode, format, path, exit_code, status, created_at
		 FROM history ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Id, &e.URL, &e.Mode, &e.Format, &e.Path, &e.ExitCode, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *Repository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM history`)
	return err
}

func (r *Repository) Close() error { return r.db.Close() }
