package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDebtValidate(t *testing.T) {
	cases := []struct {
		name string
		debt Debt
		want error
	}{
		{"valid", Debt{Name: "Rent", Total: Money{Cents: 50000}}, nil},
		{"empty name", Debt{Name: "  ", Total: Money{Cents: 100}}, ErrEmptyName},
		{"negative total", Debt{Name: "x", Total: Money{Cents: -1}}, ErrNegativeAmount},
		{"zero total allowed", Debt{Name: "x", Total: Money{Cents: 0}}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.debt.Validate()
			if !errors.Is(err, c.want) {
				t.Fatalf("Validate() = %v, want %v", err, c.want)
			}
		})
	}
}

func TestPaymentValidate(t *testing.T) {
	ok := Payment{ID: "p1", Amount: Money{Cents: 100}, Date: NewDate(2026, 1, 2), Method: Cash}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid payment rejected: %v", err)
	}

	bad := ok
	bad.ID = ""
	if err := bad.Validate(); !errors.Is(err, ErrEmptyPaymentID) {
		t.Fatalf("expected ErrEmptyPaymentID, got %v", err)
	}

	bad = ok
	bad.Method = "cheque"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidMethod) {
		t.Fatalf("expected ErrInvalidMethod, got %v", err)
	}

	bad = ok
	bad.Date = Date{}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestParseMethod(t *testing.T) {
	cases := map[string]Method{
		"cash":    Cash,
		"CASH":    Cash,
		" wallet": DigitalWallet,
		"other":   OtherMethod,
		"yape":    OtherMethod, // unknown tags collapse to other
		"":        OtherMethod,
	}
	for in, want := range cases {
		if got := ParseMethod(in); got != want {
			t.Errorf("ParseMethod(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2026, 8, 31)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2026-08-31"` {
		t.Fatalf("marshal = %s", b)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip changed date: %v != %v", back, d)
	}
}

func TestPaymentJSONShape(t *testing.T) {
	p := Payment{ID: "p1", Amount: Money{Cents: 1234}, Date: NewDate(2026, 8, 1), Method: DigitalWallet}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"p1","amount":1234,"date":"2026-08-01","method":"wallet"}`
	if string(b) != want {
		t.Fatalf("json = %s, want %s", b, want)
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := Debt{ID: "d", Name: "n", Total: Money{Cents: 1}, Payments: []Payment{{ID: "p", Amount: Money{Cents: 2}, Date: NewDate(2026, 1, 1), Method: Cash}}}
	c := d.Clone()
	c.Payments[0].Amount.Cents = 99
	if d.Payments[0].Amount.Cents != 2 {
		t.Fatal("clone shares payments slice with original")
	}
}
