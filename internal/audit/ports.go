// Package audit appends a row per debt mutation to an external trail,
// giving the tracker a history that survives deletes in the store.
package audit

import (
	"context"
	"time"
)

// Entry is one audit trail row.
type Entry struct {
	Timestamp  time.Time
	Event      string
	DebtID     string
	DebtName   string
	TotalCents int64
	PaidCents  int64
}

// TrailWriter appends entries to the audit trail.
type TrailWriter interface {
	AppendEntry(ctx context.Context, e Entry) error
}
