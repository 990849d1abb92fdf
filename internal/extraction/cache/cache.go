package cache

import (
	"sync"

	"github.com/visai-labs/extraction-be/internal/extraction/domain"
)

// Store is the fast-read accelerator in front of the durable record store.
// Implementations must be safe for concurrent use and must never return an
// entry that aliases internal state: a reader mutating a returned value must
// not affect later reads.
type Store interface {
	Get(id string) (*domain.Extraction, bool)
	Put(e *domain.Extraction)
	Delete(id string)
}

// Memory is an in-process Store backed by a mutex-guarded map. Entries are
// deep-copied on both Put and Get so a concurrent reader observes either the
// previous snapshot or the fully written one, never a partial field map.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*domain.Extraction
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*domain.Extraction),
	}
}

// Get returns a copy of the cached entry for id, if present.
func (m *Memory) Get(id string) (*domain.Extraction, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

// Put stores a copy of e, replacing any previous entry for the same id.
func (m *Memory) Put(e *domain.Extraction) {
	if e == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e.Clone()
}

// Delete removes the entry for id, if any.
func (m *Memory) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
}
