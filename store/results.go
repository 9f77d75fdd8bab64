// Package store holds the durable sinks a campaign writes to.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/use-agent/stackscout/models"
)

// Recorder accepts one result record per domain attempt.
type Recorder interface {
	Append(rec models.ResultRecord) error
}

// ResultStore is the JSON-array result document.
//
// The existing document is loaded once by OpenResults. Every Append rewrites
// the whole collection through a temp file that is fsynced and renamed over
// the destination, so readers only ever see a complete document.
// Records are never deduplicated.
type ResultStore struct {
	mu      sync.Mutex
	path    string
	records []models.ResultRecord
}

// OpenResults loads path if it exists, otherwise creates it holding "[]".
func OpenResults(path string) (*ResultStore, error) {
	s := &ResultStore{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.records = []models.ResultRecord{}
		if err := s.flush(); err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}

	if len(data) == 0 {
		s.records = []models.ResultRecord{}
		return s, nil
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", path, err)
	}
	if s.records == nil {
		s.records = []models.ResultRecord{}
	}
	return s, nil
}

// Append adds rec and durably rewrites the document. On failure the record
// is dropped from memory too, so memory never runs ahead of disk.
func (s *ResultStore) Append(rec models.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	if err := s.flush(); err != nil {
		s.records = s.records[:len(s.records)-1]
		return err
	}
	return nil
}

// Records returns a copy of every record, oldest first.
func (s *ResultStore) Records() []models.ResultRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ResultRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records held.
func (s *ResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Path returns the document location.
func (s *ResultStore) Path() string {
	return s.path
}

// flush writes the collection to a sibling temp file and renames it into place.
func (s *ResultStore) flush() error {
	data, err := json.MarshalIndent(s.records, "", "    ")
	if err != nil {
		return fmt.Errorf("store: encode results: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once the rename has succeeded.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("store: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("store: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("store: chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("store: replace %s: %w", path, err)
	}
	syncDir(dir)
	return nil
}

// syncDir persists the rename. Best-effort: not every platform supports
// fsync on a directory handle.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
