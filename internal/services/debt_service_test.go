package services

import (
	"context"
	"errors"
	"testing"

	"pagos/internal/amqp"
	"pagos/internal/core"
	"pagos/internal/store"
	"pagos/internal/store/memory"
)

type capturePublisher struct {
	events []*amqp.DebtEventMessage
	err    error
}

func (c *capturePublisher) PublishDebtEvent(_ context.Context, msg *amqp.DebtEventMessage) error {
	c.events = append(c.events, msg)
	return c.err
}

func newTestService() (*DebtService, *memory.Store, *capturePublisher) {
	st := memory.New()
	pub := &capturePublisher{}
	return NewDebtService(st, pub), st, pub
}

func TestCreateDebt(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()

	d, err := svc.CreateDebt(ctx, CreateDebtInput{Name: "Rent", TotalCents: 50000})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.ID == "" || len(d.Payments) != 0 {
		t.Fatalf("unexpected debt: %+v", d)
	}
	if len(pub.events) != 1 || pub.events[0].Event != amqp.EventDebtCreated {
		t.Fatalf("expected one created event, got %+v", pub.events)
	}
}

func TestCreateDebtValidation(t *testing.T) {
	svc, st, pub := newTestService()
	ctx := context.Background()

	cases := []CreateDebtInput{
		{Name: "", TotalCents: 100},
		{Name: "x", TotalCents: -1},
	}
	for _, in := range cases {
		if _, err := svc.CreateDebt(ctx, in); err == nil {
			t.Errorf("expected validation error for %+v", in)
		}
	}
	// Failed validations must not mutate the store or publish anything
	all, _ := st.List(ctx)
	if len(all) != 0 || len(pub.events) != 0 {
		t.Fatalf("rejected input reached the store: debts=%d events=%d", len(all), len(pub.events))
	}
}

func TestAddPaymentPrepends(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()
	d, _ := svc.CreateDebt(ctx, CreateDebtInput{Name: "Rent", TotalCents: 50000})

	first, err := svc.AddOrEditPayment(ctx, d.ID, PaymentDraft{
		AmountCents: 20000, Date: core.NewDate(2026, 8, 1), Method: core.Cash,
	}, "")
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if first.ID == "" {
		t.Fatal("payment id not minted")
	}

	second, err := svc.AddOrEditPayment(ctx, d.ID, PaymentDraft{
		AmountCents: 30000, Date: core.NewDate(2026, 8, 15), Method: core.DigitalWallet,
	}, "")
	if err != nil {
		t.Fatalf("add second payment: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("payment ids collide")
	}

	got, _ := svc.Get(ctx, d.ID)
	if len(got.Payments) != 2 || got.Payments[0].ID != second.ID || got.Payments[1].ID != first.ID {
		t.Fatalf("newest payment not first: %+v", got.Payments)
	}
	if core.TotalPaid(got).Cents != 50000 || core.Remaining(got).Cents != 0 || core.Percent(got) != 100 {
		t.Fatalf("derived values wrong: %+v", got)
	}

	// created + 2 payment events
	if len(pub.events) != 3 || pub.events[2].PaidCents != 50000 {
		t.Fatalf("unexpected events: %+v", pub.events)
	}
}

func TestEditPaymentInPlace(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	d, _ := svc.CreateDebt(ctx, CreateDebtInput{Name: "Rent", TotalCents: 50000})
	p1, _ := svc.AddOrEditPayment(ctx, d.ID, PaymentDraft{AmountCents: 100, Date: core.NewDate(2026, 8, 1), Method: core.Cash}, "")
	p2, _ := svc.AddOrEditPayment(ctx, d.ID, PaymentDraft{AmountCents: 200, Date: core.NewDate(2026, 8, 2), Method: core.Cash}, "")

	edited, err := svc.AddOrEditPayment(ctx, d.ID, PaymentDraft{
		AmountCents: 999, Date: core.NewDate(2026, 8, 3), Method: core.OtherMethod,
	}, p1.ID)
	if err != nil {
		t.Fatalf("edit payment: %v", err)
	}
	if edited.ID != p1.ID {
		t.Fatalf("edit changed identity: %s -> %s", p1.ID, edited.ID)
	}

	got, _ := svc.Get(ctx, d.ID)
	// p2 was prepended after p1, so order is [p2, p1]; the edit keeps it
	if got.Payments[0].ID != p2.ID || got.Payments[1].ID != p1.ID {
		t.Fatalf("edit moved payments: %+v", got.Payments)
	}
	if got.Payments[1].Amount.Cents != 999 || got.Payments[1].Method != core.OtherMethod {
		t.Fatalf("edit did not rewrite fields: %+v", got.Payments[1])
	}
	if got.Payments[0].Amount.Cents != 200 {
		t.Fatalf("edit touched another payment: %+v", got.Payments[0])
	}
}

func TestEditUnknownPayment(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	d, _ := svc.CreateDebt(ctx, CreateDebtInput{Name: "Rent", TotalCents: 100})

	_, err := svc.AddOrEditPayment(ctx, d.ID, PaymentDraft{AmountCents: 1, Date: core.NewDate(2026, 1, 1), Method: core.Cash}, "ghost")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown payment, got %v", err)
	}
}

func TestAddPaymentToMissingDebt(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.AddOrEditPayment(context.Background(), "missing",
		PaymentDraft{AmountCents: 1, Date: core.NewDate(2026, 1, 1), Method: core.Cash}, "")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemovePaymentRestoresPriorSequence(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	d, _ := svc.CreateDebt(ctx, CreateDebtInput{Name: "Rent", TotalCents: 100})
	p1, _ := svc.AddOrEditPayment(ctx, d.ID, PaymentDraft{AmountCents: 10, Date: core.NewDate(2026, 1, 1), Method: core.Cash}, "")
	before, _ := svc.Get(ctx, d.ID)

	p2, _ := svc.AddOrEditPayment(ctx, d.ID, PaymentDraft{AmountCents: 20, Date: core.NewDate(2026, 1, 2), Method: core.Cash}, "")
	if err := svc.RemovePayment(ctx, d.ID, p2.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	after, _ := svc.Get(ctx, d.ID)
	if len(after.Payments) != len(before.Payments) || after.Payments[0] != before.Payments[0] {
		t.Fatalf("sequence not restored: %+v vs %+v", after.Payments, before.Payments)
	}
	if after.Payments[0].ID != p1.ID {
		t.Fatalf("wrong survivor: %+v", after.Payments)
	}
}

func TestDeleteDebt(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()
	d, _ := svc.CreateDebt(ctx, CreateDebtInput{Name: "Rent", TotalCents: 100})

	if err := svc.DeleteDebt(ctx, d.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, d.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	last := pub.events[len(pub.events)-1]
	if last.Event != amqp.EventDebtDeleted || last.DebtID != d.ID {
		t.Fatalf("unexpected final event: %+v", last)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	st := memory.New()
	pub := &capturePublisher{err: errors.New("broker down")}
	svc := NewDebtService(st, pub)

	if _, err := svc.CreateDebt(context.Background(), CreateDebtInput{Name: "Rent", TotalCents: 100}); err != nil {
		t.Fatalf("mutation failed on publish error: %v", err)
	}
}

func TestShareLink(t *testing.T) {
	got := ShareLink("https://pagos.example.com", "abc-123")
	if got != "https://pagos.example.com/share/abc-123" {
		t.Fatalf("share link = %q", got)
	}
}
