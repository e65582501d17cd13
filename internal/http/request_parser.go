// Form parsing for the debt and payment handlers. Parsing failures are
// returned to the handler, which redirects without surfacing them.

package http

import (
	"fmt"
	"net/http"
	"strings"

	"pagos/internal/core"
	"pagos/internal/services"
)

// parseDebtForm extracts name and total from the new-debt form. Both fields
// are mandatory; the total arrives as a decimal string and is converted to
// cents.
func parseDebtForm(r *http.Request) (string, int64, error) {
	if err := r.ParseForm(); err != nil {
		return "", 0, fmt.Errorf("parse form: %w", err)
	}

	name := sanitizeInput(r.Form.Get("name"))
	if name == "" {
		return "", 0, fmt.Errorf("debt name is required")
	}

	total := strings.TrimSpace(r.Form.Get("total"))
	if total == "" {
		return "", 0, fmt.Errorf("debt total is required")
	}
	totalCents, err := core.ParseDecimalToCents(total)
	if err != nil {
		return "", 0, fmt.Errorf("parse total %q: %w", total, err)
	}

	return name, totalCents, nil
}

// parsePaymentForm extracts a payment draft and the optional payment_id
// that switches the save into an in-place edit. An absent date defaults to
// today; an unrecognized method falls back to "other".
func parsePaymentForm(r *http.Request) (services.PaymentDraft, string, error) {
	if err := r.ParseForm(); err != nil {
		return services.PaymentDraft{}, "", fmt.Errorf("parse form: %w", err)
	}

	amountStr := strings.TrimSpace(r.Form.Get("amount"))
	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		return services.PaymentDraft{}, "", fmt.Errorf("parse amount %q: %w", amountStr, err)
	}

	date := core.Today()
	if v := strings.TrimSpace(r.Form.Get("date")); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			return services.PaymentDraft{}, "", fmt.Errorf("parse date %q: %w", v, err)
		}
		date = parsed
	}

	draft := services.PaymentDraft{
		AmountCents: cents,
		Date:        date,
		Method:      core.ParseMethod(r.Form.Get("method")),
	}
	return draft, strings.TrimSpace(r.Form.Get("payment_id")), nil
}

// requestOrigin reconstructs the externally visible origin of the request,
// honoring reverse proxy headers.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if v := r.Header.Get("X-Forwarded-Proto"); v != "" {
		scheme = v
	}

	host := r.Host
	if v := r.Header.Get("X-Forwarded-Host"); v != "" {
		host = v
	}

	return scheme + "://" + host
}

// sanitizeInput removes potentially dangerous characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
