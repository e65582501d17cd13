package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"pagos/internal/core"
)

func formRequest(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestParseDebtForm(t *testing.T) {
	name, cents, err := parseDebtForm(formRequest(url.Values{
		"name":  {"  Moto  "},
		"total": {"1234,50"},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Moto" {
		t.Fatalf("name=%q", name)
	}
	if cents != 123450 {
		t.Fatalf("cents=%d", cents)
	}

	if _, _, err := parseDebtForm(formRequest(url.Values{"name": {"  "}})); err == nil {
		t.Fatalf("blank name must be rejected")
	}
	if _, _, err := parseDebtForm(formRequest(url.Values{"name": {"x"}, "total": {"abc"}})); err == nil {
		t.Fatalf("invalid total must be rejected")
	}
}

func TestParseDebtFormRequiresTotal(t *testing.T) {
	cases := []url.Values{
		{"name": {"Moto"}},
		{"name": {"Moto"}, "total": {""}},
		{"name": {"Moto"}, "total": {"   "}},
	}
	for _, form := range cases {
		if _, _, err := parseDebtForm(formRequest(form)); err == nil {
			t.Fatalf("form %v: missing total must be rejected", form)
		}
	}
}

func TestParsePaymentForm(t *testing.T) {
	draft, editing, err := parsePaymentForm(formRequest(url.Values{
		"amount":     {"200.00"},
		"date":       {"2026-08-01"},
		"method":     {"wallet"},
		"payment_id": {"p1"},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.AmountCents != 20000 {
		t.Fatalf("cents=%d", draft.AmountCents)
	}
	if draft.Date.String() != "2026-08-01" {
		t.Fatalf("date=%s", draft.Date)
	}
	if draft.Method != core.DigitalWallet {
		t.Fatalf("method=%s", draft.Method)
	}
	if editing != "p1" {
		t.Fatalf("editing=%q", editing)
	}
}

func TestParsePaymentFormDefaults(t *testing.T) {
	draft, editing, err := parsePaymentForm(formRequest(url.Values{"amount": {"5"}}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if editing != "" {
		t.Fatalf("editing should be empty, got %q", editing)
	}
	if draft.Date.String() != core.Today().String() {
		t.Fatalf("date should default to today, got %s", draft.Date)
	}
	if draft.Method != core.OtherMethod {
		t.Fatalf("method should default to other, got %s", draft.Method)
	}
}

func TestParsePaymentFormRejects(t *testing.T) {
	cases := []url.Values{
		{"amount": {""}},
		{"amount": {"abc"}},
		{"amount": {"-5"}},
		{"amount": {"5"}, "date": {"01/08/2026"}},
	}
	for _, form := range cases {
		if _, _, err := parsePaymentForm(formRequest(form)); err == nil {
			t.Fatalf("form %v: expected error", form)
		}
	}
}

func TestRequestOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/debts/d1/share-link", nil)
	if got := requestOrigin(req); got != "http://example.com" {
		t.Fatalf("origin=%q", got)
	}

	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("X-Forwarded-Host", "pagos.example.org")
	if got := requestOrigin(req); got != "https://pagos.example.org" {
		t.Fatalf("proxied origin=%q", got)
	}
}

func TestSanitizeInput(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  hola  ", "hola"},
		{"a\x00b\x1fc", "abc"},
		{"line\nkeeps", "line\nkeeps"},
	}
	for _, c := range cases {
		if got := sanitizeInput(c.in); got != c.want {
			t.Fatalf("sanitize(%q)=%q want %q", c.in, got, c.want)
		}
	}
}
