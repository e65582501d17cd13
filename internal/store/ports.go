package store

import (
	"context"
	"errors"

	"pagos/internal/core"
)

// ErrNotFound is returned when a debt id does not exist in the store.
var ErrNotFound = errors.New("debt not found")

// DebtStore is the document-store contract the application consumes. The
// store is an eventually-consistent collection of debt records keyed by
// generated ids; payment mutations replace the whole payments field in one
// update, so concurrent writers race last-write-wins at field level.
type DebtStore interface {
	// List returns the full current collection in store enumeration order.
	List(ctx context.Context) ([]core.Debt, error)

	// Get returns one debt by id, or ErrNotFound.
	Get(ctx context.Context, id string) (core.Debt, error)

	// Create inserts a new debt with an empty payment sequence and returns
	// it with the store-assigned id.
	Create(ctx context.Context, name string, totalCents int64) (core.Debt, error)

	// SetPayments overwrites the debt's payment sequence as one field
	// update. Returns ErrNotFound when the debt no longer exists.
	SetPayments(ctx context.Context, id string, payments []core.Payment) error

	// Delete removes the debt and, transitively, all its payments.
	Delete(ctx context.Context, id string) error

	// Watch subscribes to the collection. The channel receives the current
	// snapshot once on subscribe and then the complete collection after
	// every change by any writer; no diffing. The cancel func releases the
	// subscription; it is also released when ctx ends. The channel is
	// closed on release.
	Watch(ctx context.Context) (<-chan []core.Debt, func())
}
