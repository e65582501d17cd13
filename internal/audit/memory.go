package audit

import (
	"context"
	"sync"
)

// MemoryTrail keeps entries in memory, for local runs and tests.
type MemoryTrail struct {
	mu      sync.Mutex
	entries []Entry
}

var _ TrailWriter = (*MemoryTrail)(nil)

func NewMemoryTrail() *MemoryTrail {
	return &MemoryTrail{}
}

func (m *MemoryTrail) AppendEntry(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

// Entries returns a copy of everything appended so far.
func (m *MemoryTrail) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
