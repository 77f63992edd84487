package calibstore

import "sync"

// MemoryStore implements Store in memory. Useful for tests and for
// running the engine without persistence.
type MemoryStore struct {
	mu  sync.Mutex
	rec Record
	set bool

	// SaveCount tracks the number of Save calls, for test assertions.
	SaveCount int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored record, or a zero Record if nothing was saved.
func (s *MemoryStore) Load() (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return Record{}, nil
	}
	return s.rec, nil
}

// Save stores the record.
func (s *MemoryStore) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = rec
	s.set = true
	s.SaveCount++
	return nil
}

// Clear drops the stored record.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = Record{}
	s.set = false
	return nil
}

// Verify MemoryStore implements Store at compile time.
var _ Store = (*MemoryStore)(nil)
