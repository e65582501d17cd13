// Package memory implements the debt store on a process-local map. It is
// the default backend for tests and local development.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"pagos/internal/core"
	"pagos/internal/store"
)

type Store struct {
	mu    sync.Mutex
	order []string // insertion order, the store's enumeration order
	debts map[string]core.Debt
	hub   *store.Hub
}

var _ store.DebtStore = (*Store)(nil)

func New() *Store {
	return &Store{
		debts: make(map[string]core.Debt),
		hub:   store.NewHub(),
	}
}

// Seed inserts debts with their existing ids, for tests and import flows.
func (s *Store) Seed(debts ...core.Debt) {
	s.mu.Lock()
	for _, d := range debts {
		if _, ok := s.debts[d.ID]; !ok {
			s.order = append(s.order, d.ID)
		}
		s.debts[d.ID] = d.Clone()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.hub.Broadcast(snap)
}

func (s *Store) List(_ context.Context) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

func (s *Store) Get(_ context.Context, id string) (core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debts[id]
	if !ok {
		return core.Debt{}, store.ErrNotFound
	}
	return d.Clone(), nil
}

func (s *Store) Create(_ context.Context, name string, totalCents int64) (core.Debt, error) {
	d := core.Debt{
		ID:       uuid.NewString(),
		Name:     name,
		Total:    core.Money{Cents: totalCents},
		Payments: []core.Payment{},
	}
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}

	s.mu.Lock()
	s.debts[d.ID] = d
	s.order = append(s.order, d.ID)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.hub.Broadcast(snap)
	return d.Clone(), nil
}

func (s *Store) SetPayments(_ context.Context, id string, payments []core.Payment) error {
	s.mu.Lock()
	d, ok := s.debts[id]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	d.Payments = make([]core.Payment, len(payments))
	copy(d.Payments, payments)
	s.debts[id] = d
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.hub.Broadcast(snap)
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.debts[id]; !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	delete(s.debts, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.hub.Broadcast(snap)
	return nil
}

func (s *Store) Watch(ctx context.Context) (<-chan []core.Debt, func()) {
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	return s.hub.Subscribe(ctx, snap)
}

func (s *Store) snapshotLocked() []core.Debt {
	out := make([]core.Debt, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.debts[id].Clone())
	}
	return out
}
