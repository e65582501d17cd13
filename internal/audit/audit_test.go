package audit

import (
	"context"
	"testing"
	"time"
)

func TestRowValues(t *testing.T) {
	e := Entry{
		Timestamp:  time.Date(2026, 8, 31, 15, 4, 5, 0, time.UTC),
		Event:      "payments_changed",
		DebtID:     "d1",
		DebtName:   "Moto",
		TotalCents: 50000,
		PaidCents:  20050,
	}

	row := rowValues(e)
	if len(row) != 6 {
		t.Fatalf("row length=%d", len(row))
	}
	if row[0] != "2026-08-31T15:04:05Z" {
		t.Fatalf("timestamp=%v", row[0])
	}
	if row[1] != "payments_changed" || row[2] != "d1" || row[3] != "Moto" {
		t.Fatalf("row=%v", row)
	}
	if row[4] != 500.0 || row[5] != 200.5 {
		t.Fatalf("amounts=%v %v", row[4], row[5])
	}
}

func TestMemoryTrail(t *testing.T) {
	trail := NewMemoryTrail()

	for i, event := range []string{"debt_created", "payments_changed"} {
		err := trail.AppendEntry(context.Background(), Entry{Event: event, DebtID: "d1"})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	entries := trail.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries=%d", len(entries))
	}
	if entries[0].Event != "debt_created" || entries[1].Event != "payments_changed" {
		t.Fatalf("order not preserved: %+v", entries)
	}

	// Entries returns a copy.
	entries[0].Event = "mutated"
	if trail.Entries()[0].Event != "debt_created" {
		t.Fatalf("internal state must not be shared")
	}
}
