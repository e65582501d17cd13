package services

import (
	"context"
	"log/slog"
	"sync"

	"pagos/internal/core"
	"pagos/internal/store"
)

// SnapshotStore owns the long-lived store subscription and holds the
// current collection, replaced wholesale on every push. The presentation
// layer reads from here instead of keeping its own mutable list.
type SnapshotStore struct {
	mu    sync.RWMutex
	debts []core.Debt
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{debts: []core.Debt{}}
}

// Run subscribes to the store and keeps the snapshot current until ctx
// ends. The subscription is released on return.
func (s *SnapshotStore) Run(ctx context.Context, st store.DebtStore) error {
	ch, release := st.Watch(ctx)
	defer release()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-ch:
			if !ok {
				return nil
			}
			s.replace(snap)
			slog.DebugContext(ctx, "Snapshot replaced", "debts", len(snap))
		}
	}
}

func (s *SnapshotStore) replace(snap []core.Debt) {
	s.mu.Lock()
	s.debts = snap
	s.mu.Unlock()
}

// Debts returns the current collection. The slice is shared with the
// subscription push and must be treated as read-only.
func (s *SnapshotStore) Debts() []core.Debt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.debts
}

// Get returns the debt with the given id from the current snapshot.
func (s *SnapshotStore) Get(id string) (core.Debt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.debts {
		if d.ID == id {
			return d, true
		}
	}
	return core.Debt{}, false
}
