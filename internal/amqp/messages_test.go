package amqp

import (
	"testing"
	"time"

	"pagos/internal/core"
)

func TestNewDebtEventMessage(t *testing.T) {
	d := core.Debt{
		ID:    "d1",
		Name:  "Rent",
		Total: core.Money{Cents: 50000},
		Payments: []core.Payment{
			{ID: "p1", Amount: core.Money{Cents: 20000}, Date: core.NewDate(2026, 8, 1), Method: core.Cash},
		},
	}

	msg := NewDebtEventMessage(EventPaymentsChanged, d)
	if msg.Event != EventPaymentsChanged || msg.DebtID != "d1" || msg.Name != "Rent" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.TotalCents != 50000 || msg.PaidCents != 20000 {
		t.Fatalf("amounts not derived: %+v", msg)
	}
	if msg.Timestamp.IsZero() {
		t.Fatal("timestamp not set")
	}
}

func TestDebtEventMessageJSONRoundTrip(t *testing.T) {
	orig := &DebtEventMessage{
		Event:      EventDebtDeleted,
		DebtID:     "d2",
		Name:       "Car",
		TotalCents: 100000,
		PaidCents:  100000,
		Timestamp:  time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
	}

	body, err := orig.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}

	back, err := DebtEventMessageFromJSON(body)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if *back != *orig {
		t.Fatalf("round trip mismatch: %+v != %+v", back, orig)
	}
}

func TestDebtEventMessageFromJSONInvalid(t *testing.T) {
	if _, err := DebtEventMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for invalid payload")
	}
}
