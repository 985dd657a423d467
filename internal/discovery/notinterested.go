package discovery

import (
	"context"
	"sync"
)

// NotInterestedStore holds the ids a user dismissed. The set is append-only
// for the lifetime of an engine instance; implementations decide whether it
// outlives the session. The default in-memory store is ephemeral.
type NotInterestedStore interface {
	// Add records a dismissal. Adding an id twice is a no-op.
	Add(ctx context.Context, id string) error
	// Contains reports whether an id was dismissed.
	Contains(ctx context.Context, id string) (bool, error)
	// IDs returns a snapshot of all dismissed ids.
	IDs(ctx context.Context) ([]string, error)
}

// MemoryNotInterested is the default session-scoped NotInterestedStore.
// Safe for concurrent use.
type MemoryNotInterested struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewMemoryNotInterested creates an empty in-memory dismissal set.
func NewMemoryNotInterested() *MemoryNotInterested {
	return &MemoryNotInterested{ids: make(map[string]struct{})}
}

// Add records a dismissal.
func (m *MemoryNotInterested) Add(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[id] = struct{}{}
	return nil
}

// Contains reports whether an id was dismissed.
func (m *MemoryNotInterested) Contains(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.ids[id]
	return ok, nil
}

// IDs returns a snapshot of all dismissed ids.
func (m *MemoryNotInterested) IDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.ids))
	for id := range m.ids {
		out = append(out, id)
	}
	return out, nil
}
