package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"pagos/internal/amqp"
	"pagos/internal/audit"
)

type failingTrail struct{}

func (failingTrail) AppendEntry(context.Context, audit.Entry) error {
	return errors.New("sheet unavailable")
}

func TestHandleDebtEventAppendsEntry(t *testing.T) {
	trail := audit.NewMemoryTrail()
	w := NewAuditWorker(trail)

	ts := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	msg := &amqp.DebtEventMessage{
		Event:      amqp.EventPaymentsChanged,
		DebtID:     "d1",
		Name:       "Moto",
		TotalCents: 50000,
		PaidCents:  20000,
		Timestamp:  ts,
	}

	if err := w.HandleDebtEvent(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	entries := trail.Entries()
	if len(entries) != 1 {
		t.Fatalf("entries=%d", len(entries))
	}
	e := entries[0]
	if e.Event != amqp.EventPaymentsChanged || e.DebtID != "d1" || e.DebtName != "Moto" {
		t.Fatalf("entry=%+v", e)
	}
	if e.TotalCents != 50000 || e.PaidCents != 20000 {
		t.Fatalf("amounts=%+v", e)
	}
	if !e.Timestamp.Equal(ts) {
		t.Fatalf("timestamp=%v", e.Timestamp)
	}
}

func TestHandleDebtEventDefaultsTimestamp(t *testing.T) {
	trail := audit.NewMemoryTrail()
	w := NewAuditWorker(trail)

	msg := &amqp.DebtEventMessage{Event: amqp.EventDebtDeleted, DebtID: "d1"}
	if err := w.HandleDebtEvent(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if trail.Entries()[0].Timestamp.IsZero() {
		t.Fatalf("zero timestamp must be replaced")
	}
}

func TestHandleDebtEventPropagatesTrailError(t *testing.T) {
	w := NewAuditWorker(failingTrail{})
	msg := &amqp.DebtEventMessage{Event: amqp.EventDebtCreated, DebtID: "d1"}
	if err := w.HandleDebtEvent(context.Background(), msg); err == nil {
		t.Fatalf("expected error to requeue the delivery")
	}
}
