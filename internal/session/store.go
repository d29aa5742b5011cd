// Package session remembers, for the lifetime of the process, the expand
// state the user chose for each task identifier. The state survives reloads
// of the panel but is never written to disk.
package session

import (
	"sort"
	"sync"

	"github.com/Iron-Ham/recents/internal/task"
)

// Store maps task identifiers to their durable expand state.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]task.ExpandState
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]task.ExpandState)}
}

// Record stores the durable part of state for identifier. The top-task and
// system-expanded annotations belong to a single load and are dropped.
func (s *Store) Record(identifier string, state task.ExpandState) {
	if identifier == "" {
		return
	}
	s.mu.Lock()
	s.entries[identifier] = state.Durable()
	s.mu.Unlock()
}

// Lookup returns the last recorded state for identifier.
func (s *Store) Lookup(identifier string) (task.ExpandState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.entries[identifier]
	return state, ok
}

// Forget removes identifier and reports whether it was known.
func (s *Store) Forget(identifier string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[identifier]; !ok {
		return false
	}
	delete(s.entries, identifier)
	return true
}

// Retain keeps only the identifiers for which keep returns true and returns
// the number of entries removed.
func (s *Store) Retain(keep func(identifier string) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id := range s.entries {
		if !keep(id) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Snapshot records the state of every descriptor.
func (s *Store) Snapshot(descs []task.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range descs {
		if d.Identifier != "" {
			s.entries[d.Identifier] = d.State.Durable()
		}
	}
}

// Len returns the number of known identifiers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Identifiers returns the known identifiers, sorted.
func (s *Store) Identifiers() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids
}
