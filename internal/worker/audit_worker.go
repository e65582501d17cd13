// Package worker consumes debt events and mirrors them to the audit trail.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pagos/internal/amqp"
	"pagos/internal/audit"
)

// AuditWorker turns debt events into audit trail rows. Events are
// denormalized at publish time, so the worker never reads the store and
// keeps working for records that were already deleted.
type AuditWorker struct {
	trail audit.TrailWriter
}

func NewAuditWorker(trail audit.TrailWriter) *AuditWorker {
	return &AuditWorker{trail: trail}
}

// HandleDebtEvent processes one debt event message. A returned error makes
// the consumer requeue the delivery.
func (w *AuditWorker) HandleDebtEvent(ctx context.Context, msg *amqp.DebtEventMessage) error {
	slog.InfoContext(ctx, "Processing debt event",
		"event", msg.Event,
		"debt_id", msg.DebtID)

	entry := audit.Entry{
		Timestamp:  msg.Timestamp,
		Event:      msg.Event,
		DebtID:     msg.DebtID,
		DebtName:   msg.Name,
		TotalCents: msg.TotalCents,
		PaidCents:  msg.PaidCents,
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if err := w.trail.AppendEntry(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry for debt %s: %w", msg.DebtID, err)
	}

	slog.InfoContext(ctx, "Debt event recorded",
		"event", msg.Event,
		"debt_id", msg.DebtID,
		"total_cents", msg.TotalCents,
		"paid_cents", msg.PaidCents)
	return nil
}
