package http

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"pagos/internal/core"
	applog "pagos/internal/log"
	"pagos/internal/store"
)

type paymentView struct {
	ID        string
	Amount    string
	AmountRaw string
	Date      string
	Method    string
	MethodRaw string
}

type debtView struct {
	ID        string
	Name      string
	Total     string
	Paid      string
	Remaining string
	Percent   int
	Overpaid  bool
	Settled   bool
	Payments  []paymentView
}

func newDebtView(d core.Debt) debtView {
	remaining := core.Remaining(d)
	v := debtView{
		ID:        d.ID,
		Name:      d.Name,
		Total:     formatSoles(d.Total.Cents),
		Paid:      formatSoles(core.TotalPaid(d).Cents),
		Remaining: formatSoles(remaining.Cents),
		Percent:   core.Percent(d),
		Overpaid:  remaining.Cents < 0,
		Settled:   remaining.Cents <= 0 && d.Total.Cents > 0,
	}
	for _, p := range d.Payments {
		v.Payments = append(v.Payments, paymentView{
			ID:        p.ID,
			Amount:    formatSoles(p.Amount.Cents),
			AmountRaw: p.Amount.Format(),
			Date:      p.Date.String(),
			Method:    p.Method.Label(),
			MethodRaw: string(p.Method),
		})
	}
	return v
}

// formatSoles renders cents as a Peruvian sol amount, e.g. "S/ 12.34".
func formatSoles(cents int64) string {
	if cents < 0 {
		return "-S/ " + core.Money{Cents: -cents}.Format()
	}
	return "S/ " + core.Money{Cents: cents}.Format()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	debts, err := s.service.List(r.Context())
	if err != nil {
		s.structLog.LogError(r.Context(), "Debt list failed", err, applog.ComponentHTTP, applog.OpList, applog.NewFields())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := struct {
		Debts []debtView
	}{}
	for _, d := range debts {
		data.Debts = append(data.Debts, newDebtView(d))
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleDebtDetail(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	id := mux.Vars(r)["id"]
	d, err := s.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(r.Context(), "Debt read error", "error", err, "debt_id", id)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := struct {
		Debt     debtView
		ReadOnly bool
		Methods  []core.Method
	}{
		Debt:    newDebtView(d),
		Methods: []core.Method{core.Cash, core.DigitalWallet, core.OtherMethod},
	}

	if err := s.templates.ExecuteTemplate(w, "debt.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Debt template execution failed", "error", err, "template", "debt.html", "debt_id", id)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleShareView renders the read-only variant of the detail page without
// requiring a session. Rendered pages are cached briefly by debt id.
func (s *Server) handleShareView(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	id := mux.Vars(r)["id"]
	key := shareCacheKey(id)

	if s.shareCache != nil {
		if page, found := s.shareCache.Get(r.Context(), key); found {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(page))
			return
		}
	}

	d, ok := s.snapshotGet(r, id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	data := struct {
		Debt     debtView
		ReadOnly bool
		Methods  []core.Method
	}{
		Debt:     newDebtView(d),
		ReadOnly: true,
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "debt.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Share template execution failed", "error", err, "debt_id", id)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if s.shareCache != nil {
		if err := s.shareCache.Set(r.Context(), key, buf.String()); err != nil {
			slog.WarnContext(r.Context(), "Share cache write failed", "error", err, "debt_id", id)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// snapshotGet prefers the in-memory snapshot and falls back to the store,
// so share views keep working before the first snapshot arrives.
func (s *Server) snapshotGet(r *http.Request, id string) (core.Debt, bool) {
	if s.snapshot != nil {
		if d, ok := s.snapshot.Get(id); ok {
			return d, true
		}
	}
	d, err := s.service.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.ErrorContext(r.Context(), "Share view read error", "error", err, "debt_id", id)
		}
		return core.Debt{}, false
	}
	return d, true
}

func shareCacheKey(debtID string) string {
	return "share:" + debtID
}

// invalidateShare drops the cached share page after a mutation.
func (s *Server) invalidateShare(r *http.Request, debtID string) {
	if s.shareCache == nil {
		return
	}
	if err := s.shareCache.Delete(r.Context(), shareCacheKey(debtID)); err != nil {
		slog.WarnContext(r.Context(), "Share cache invalidation failed", "error", err, "debt_id", debtID)
	}
}
