// Package presets persists named download presets, so the frontend can
// offer one-click re-use of a mode/format/filename combination.
package presets

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/ytdesk/ytdesk/server/internal/runner"
)

var (
	bucket = []byte("presets")

	ErrNotFound = errors.New("preset not found")
)

type Preset struct {
	Id       string      `json:"id"`
	Name     string      `json:"name"`
	Mode     runner.Mode `json:"mode"`
	Format   string      `json:"format,omitempty"`
	Filename string      `json:"filename,omitempty"`
}

type Store struct {
	db *bolt.DB
}

func NewStore(db *bolt.DB) (*Store, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Save(p *Preset) error {
	if p.Id == "" {
		p.Id = uuid.NewString()
	}

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(p.Id), data)
	})
}

func (s *Store) Get(id string) (*Preset, error) {
	var p Preset

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		v := b.Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &p)
	})
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Store) List() ([]Preset, error) {
	result := make([]Preset, 0)

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.ForEach(func(k, v []byte) error {
			var p Preset
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			result = append(result, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Delete([]byte(id))
	})
}
