// Package cache is a compiled-identifier cache for hashtab-build mode
// (SPEC_FULL.md domain stack): when qmldiff walks a large QML tree to
// collect identifiers (internal/hashtab.BuildFromTree), re-walking every
// file on every run is wasted work if the file's content hasn't changed
// since the last run. Store keys a per-file identifier set by the file's
// content hash and persists it with CBOR (ground: sigil/core, opal/core
// both depend on fxamacker/cbor/v2 for exactly this kind of compact,
// schema-free structured cache record).
package cache

import (
	"bytes"
	"io"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// Entry is one file's cached identifier collection, valid only while
// SourceHash matches the file's current content hash.
type Entry struct {
	SourceHash  uint64            `cbor:"h"`
	Identifiers map[uint64]string `cbor:"ids"`
}

// Store maps a file path to its cached Entry, safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New returns an empty cache.
func New() *Store {
	return &Store{entries: make(map[string]Entry)}
}

// Load reads a cache previously written by Save. A missing or empty reader
// yields an empty, usable cache rather than an error.
func Load(r io.Reader) (*Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s := New()
	if len(data) == 0 {
		return s, nil
	}
	if err := cbor.Unmarshal(data, &s.entries); err != nil {
		return nil, err
	}
	if s.entries == nil {
		s.entries = make(map[string]Entry)
	}
	return s, nil
}

// Save persists the cache as a single CBOR-encoded map.
func (s *Store) Save(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := cbor.Marshal(s.entries)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, bytes.NewReader(data))
	return err
}

// Lookup returns path's cached identifiers if sourceHash still matches.
func (s *Store) Lookup(path string, sourceHash uint64) (map[uint64]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[path]
	if !ok || e.SourceHash != sourceHash {
		return nil, false
	}
	return e.Identifiers, true
}

// Put records path's identifier collection under sourceHash, replacing any
// previous (necessarily stale) entry.
func (s *Store) Put(path string, sourceHash uint64, identifiers map[uint64]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[path] = Entry{SourceHash: sourceHash, Identifiers: identifiers}
}

// Len reports how many files have cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
