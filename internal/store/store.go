// Package store keeps the candidate records of a session in memory.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/spigell/resume-sieve/internal/candidate"
)

var ErrNotFound = errors.New("candidate not found")

// AddStatus tells what Add did with a record.
type AddStatus int

const (
	Added AddStatus = iota
	Replaced
	Skipped
)

func (s AddStatus) String() string {
	switch s {
	case Added:
		return "added"
	case Replaced:
		return "replaced"
	case Skipped:
		return "skipped"
	}
	return fmt.Sprintf("AddStatus(%d)", int(s))
}

// Store is a session-scoped collection of records kept in insertion order.
// All methods are safe for concurrent use; records go in and come out as copies.
type Store struct {
	mu      sync.RWMutex
	records []candidate.Record
}

func New() *Store {
	return &Store{}
}

// Add appends rec. When a record with the same source file name exists it is
// either kept (overwrite=false, Skipped) or removed before rec is appended
// (overwrite=true, Replaced).
func (s *Store) Add(rec candidate.Record, overwrite bool) (AddStatus, error) {
	if rec.ID == "" {
		return Skipped, errors.New("record id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexByID(rec.ID) != -1 {
		return Skipped, fmt.Errorf("record id %s already stored", rec.ID)
	}

	status := Added
	if idx := s.indexByFile(rec.SourceFileName); idx != -1 {
		if !overwrite {
			return Skipped, nil
		}
		s.records = slices.Delete(s.records, idx, idx+1)
		status = Replaced
	}

	s.records = append(s.records, rec.Clone())
	return status, nil
}

// Edit replaces every field of the record with the given id except ID, SourceFileName
// and ProcessedAt, sanitizes the result and recomputes the score.
func (s *Store) Edit(id string, update candidate.Record) (candidate.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexByID(id)
	if idx == -1 {
		return candidate.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	current := s.records[idx]
	update = update.Clone()
	update.ID = current.ID
	update.SourceFileName = current.SourceFileName
	update.ProcessedAt = current.ProcessedAt
	update.Sanitize()
	update.Rescore()

	s.records[idx] = update
	return update.Clone(), nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexByID(id)
	if idx == -1 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.records = slices.Delete(s.records, idx, idx+1)
	return nil
}

// Clear removes every record.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

// All returns copies of the records in insertion order.
func (s *Store) All() []candidate.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]candidate.Record, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.Clone()
	}
	return out
}

func (s *Store) Get(id string) (candidate.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexByID(id)
	if idx == -1 {
		return candidate.Record{}, false
	}
	return s.records[idx].Clone(), true
}

// HasFile reports whether a record from the given source file is stored.
func (s *Store) HasFile(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexByFile(name) != -1
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// DumpToTmpFile writes all records as indented JSON to a new temporary file and
// returns its name.
func (s *Store) DumpToTmpFile() (string, error) {
	records := s.All()

	file, err := os.CreateTemp("", "candidates_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return "", fmt.Errorf("encode candidates: %w", err)
	}
	return file.Name(), nil
}

func (s *Store) indexByID(id string) int {
	return slices.IndexFunc(s.records, func(r candidate.Record) bool { return r.ID == id })
}

func (s *Store) indexByFile(name string) int {
	return slices.IndexFunc(s.records, func(r candidate.Record) bool { return r.SourceFileName == name })
}
