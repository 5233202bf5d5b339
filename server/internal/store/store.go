// Package store keeps the in-memory registry of run handles. Terminal
// handles stay registered until cleared so the frontend can still read
// their final state and drain leftover output.
package store

import (
	"errors"
	"sync"

	"github.com/ytdesk/ytdesk/server/internal/runner"
)

var ErrNotFound = errors.New("no run found for the given key")

// In-memory thread-safe registry of downloader runs
type Store struct {
	table map[string]*runner.RunHandle
	mu    sync.RWMutex
}

func New() *Store {
	return &Store{
		table: make(map[string]*runner.RunHandle),
	}
}

// Get a run handle given its id
func (s *Store) Get(id string) (*runner.RunHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.table[id]
	if !ok {
		return nil, ErrNotFound
	}

	return entry, nil
}

// Store a run handle and return its id
func (s *Store) Set(h *runner.RunHandle) string {
	s.mu.Lock()
	s.table[h.GetId()] = h
	s.mu.Unlock()

	return h.GetId()
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.table, id)
	s.mu.Unlock()
}

// Active returns the run still in flight, if any. At most one exists:
// the service refuses to start a second one.
func (s *Store) Active() (*runner.RunHandle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, h := range s.table {
		if !h.IsComplete() {
			return h, true
		}
	}

	return nil, false
}

func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.table))
	for id := range s.table {
		keys = append(keys, id)
	}

	return keys
}

// All returns a snapshot of every registered run
func (s *Store) All() []runner.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots := make([]runner.Snapshot, 0, len(s.table))
	for _, h := range s.table {
		snapshots = append(snapshots, *h.Snapshot())
	}

	return snapshots
}

// ClearCompleted drops terminal handles and reports how many were removed.
func (s *Store) ClearCompleted() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, h := range s.table {
		if h.IsComplete() {
			delete(s.table, id)
			removed++
		}
	}

	return removed
}
