package amqp

import (
	"encoding/json"
	"time"

	"pagos/internal/core"
)

const (
	EventDebtCreated     = "debt_created"
	EventPaymentsChanged = "payments_changed"
	EventDebtDeleted     = "debt_deleted"
)

// DebtEventMessage describes one mutation of the debt collection. It is
// denormalized so the audit worker can write a row without store access,
// which matters for deletes where nothing is left to fetch.
type DebtEventMessage struct {
	Event      string    `json:"event"`
	DebtID     string    `json:"debt_id"`
	Name       string    `json:"name"`
	TotalCents int64     `json:"total_cents"`
	PaidCents  int64     `json:"paid_cents"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewDebtEventMessage builds a message from the debt's post-mutation state.
func NewDebtEventMessage(event string, d core.Debt) *DebtEventMessage {
	return &DebtEventMessage{
		Event:      event,
		DebtID:     d.ID,
		Name:       d.Name,
		TotalCents: d.Total.Cents,
		PaidCents:  core.TotalPaid(d).Cents,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DebtEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DebtEventMessageFromJSON creates a message from JSON bytes
func DebtEventMessageFromJSON(data []byte) (*DebtEventMessage, error) {
	var msg DebtEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
