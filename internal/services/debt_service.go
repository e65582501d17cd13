// Package services implements the application operations between the HTTP
// layer and the debt store: debt creation and deletion, payment sequence
// mutations, share links, snapshot fan-out and export/import.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"pagos/internal/amqp"
	"pagos/internal/core"
	"pagos/internal/store"
)

// EventPublisher publishes debt mutation events. amqp.Client satisfies it;
// a nil publisher disables eventing.
type EventPublisher interface {
	PublishDebtEvent(ctx context.Context, msg *amqp.DebtEventMessage) error
}

// CreateDebtInput is the validated payload for a new debt.
type CreateDebtInput struct {
	Name       string `validate:"required,max=200"`
	TotalCents int64  `validate:"gte=0"`
}

// PaymentDraft carries the user-editable payment fields. The id is never
// part of the draft: it is minted on add and preserved on edit. Date and
// Method are checked by core.Payment.Validate, not by struct tags.
type PaymentDraft struct {
	AmountCents int64 `validate:"gte=0"`
	Date        core.Date
	Method      core.Method
}

// DebtService is the repository adapter over the document store. Every
// payment mutation rewrites the whole sequence as one field update; the
// store's consistency model (last writer wins) applies unchanged.
type DebtService struct {
	store    store.DebtStore
	events   EventPublisher
	validate *validator.Validate
}

func NewDebtService(st store.DebtStore, events EventPublisher) *DebtService {
	return &DebtService{
		store:    st,
		events:   events,
		validate: validator.New(),
	}
}

// CreateDebt validates the input and inserts a debt with an empty payment
// sequence. Callers observe the new record through the snapshot feed, not
// through a synchronous read.
func (s *DebtService) CreateDebt(ctx context.Context, in CreateDebtInput) (core.Debt, error) {
	if err := s.validate.Struct(in); err != nil {
		return core.Debt{}, fmt.Errorf("validate debt: %w", err)
	}

	d, err := s.store.Create(ctx, in.Name, in.TotalCents)
	if err != nil {
		return core.Debt{}, fmt.Errorf("create debt: %w", err)
	}

	s.publish(ctx, amqp.EventDebtCreated, d)
	return d, nil
}

// AddOrEditPayment applies a draft to the debt's payment sequence. With an
// empty editingID a new payment is minted and prepended; otherwise the
// matching payment is rewritten in place, position preserved. The whole
// resulting sequence is written back as one field update.
func (s *DebtService) AddOrEditPayment(ctx context.Context, debtID string, draft PaymentDraft, editingID string) (core.Payment, error) {
	if err := s.validate.Struct(draft); err != nil {
		return core.Payment{}, fmt.Errorf("validate payment: %w", err)
	}

	d, err := s.store.Get(ctx, debtID)
	if err != nil {
		return core.Payment{}, fmt.Errorf("load debt %s: %w", debtID, err)
	}

	p := core.Payment{
		ID:     editingID,
		Amount: core.Money{Cents: draft.AmountCents},
		Date:   draft.Date,
		Method: draft.Method,
	}

	var next []core.Payment
	if editingID == "" {
		p.ID = uuid.NewString()
		next = core.PrependPayment(d.Payments, p)
	} else {
		var found bool
		next, found = core.ReplacePayment(d.Payments, p)
		if !found {
			return core.Payment{}, fmt.Errorf("edit payment %s: %w", editingID, store.ErrNotFound)
		}
	}
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}

	if err := s.store.SetPayments(ctx, debtID, next); err != nil {
		return core.Payment{}, fmt.Errorf("write payments: %w", err)
	}

	d.Payments = next
	s.publish(ctx, amqp.EventPaymentsChanged, d)
	return p, nil
}

// RemovePayment filters the payment out of the sequence and writes the
// filtered sequence back. Removing an unknown payment id is a no-op write.
func (s *DebtService) RemovePayment(ctx context.Context, debtID, paymentID string) error {
	d, err := s.store.Get(ctx, debtID)
	if err != nil {
		return fmt.Errorf("load debt %s: %w", debtID, err)
	}

	next := core.FilterPayment(d.Payments, paymentID)
	if err := s.store.SetPayments(ctx, debtID, next); err != nil {
		return fmt.Errorf("write payments: %w", err)
	}

	d.Payments = next
	s.publish(ctx, amqp.EventPaymentsChanged, d)
	return nil
}

// DeleteDebt removes the record and all its payments permanently. The
// caller is responsible for navigating away from the detail view.
func (s *DebtService) DeleteDebt(ctx context.Context, debtID string) error {
	d, err := s.store.Get(ctx, debtID)
	if err != nil {
		return fmt.Errorf("load debt %s: %w", debtID, err)
	}

	if err := s.store.Delete(ctx, debtID); err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}

	s.publish(ctx, amqp.EventDebtDeleted, d)
	return nil
}

// Get returns one debt by id.
func (s *DebtService) Get(ctx context.Context, debtID string) (core.Debt, error) {
	return s.store.Get(ctx, debtID)
}

// List returns the full collection in store enumeration order.
func (s *DebtService) List(ctx context.Context) ([]core.Debt, error) {
	return s.store.List(ctx)
}

// Watch exposes the store subscription to the HTTP layer.
func (s *DebtService) Watch(ctx context.Context) (<-chan []core.Debt, func()) {
	return s.store.Watch(ctx)
}

// ShareLink builds the unauthenticated read-only URL for one debt:
// origin + "/share/" + id. No signing, no expiry.
func ShareLink(origin, debtID string) string {
	return origin + "/share/" + debtID
}

// publish sends the event best effort: a failed publish is logged and never
// fails the mutation that triggered it.
func (s *DebtService) publish(ctx context.Context, event string, d core.Debt) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishDebtEvent(ctx, amqp.NewDebtEventMessage(event, d)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish debt event",
			"event", event,
			"debt_id", d.ID,
			"error", err)
	}
}
