package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	applog "pagos/internal/log"
	"pagos/internal/services"
	"pagos/internal/store"
)

// handleCreateDebt inserts a new debt from the index form. Malformed input
// redirects back without feedback, matching the rest of the form handling.
func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	name, totalCents, err := parseDebtForm(r)
	if err != nil {
		slog.WarnContext(r.Context(), "Debt form rejected", "error", err)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	d, err := s.service.CreateDebt(r.Context(), services.CreateDebtInput{
		Name:       name,
		TotalCents: totalCents,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Debt create error", "error", err, "debt_name", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Debt created",
		applog.NewFields().WithDebt(d.ID, d.Name, d.Total.Cents).WithOperation(applog.OpCreate).ToSlice()...)
	http.Redirect(w, r, "/debts/"+d.ID, http.StatusSeeOther)
}

// handleSavePayment adds a payment or, when the form carries a payment_id,
// rewrites the matching one in place.
func (s *Server) handleSavePayment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	draft, editingID, err := parsePaymentForm(r)
	if err != nil {
		slog.WarnContext(r.Context(), "Payment form rejected", "error", err, "debt_id", id)
		http.Redirect(w, r, "/debts/"+id, http.StatusSeeOther)
		return
	}

	p, err := s.service.AddOrEditPayment(r.Context(), id, draft, editingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(r.Context(), "Payment save error", "error", err, "debt_id", id, "payment_id", editingID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.invalidateShare(r, id)
	slog.InfoContext(r.Context(), "Payment saved", "debt_id", id, "payment_id", p.ID, "amount_cents", p.Amount.Cents)
	http.Redirect(w, r, "/debts/"+id, http.StatusSeeOther)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, pid := vars["id"], vars["pid"]

	if err := s.service.RemovePayment(r.Context(), id, pid); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(r.Context(), "Payment delete error", "error", err, "debt_id", id, "payment_id", pid)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.invalidateShare(r, id)
	http.Redirect(w, r, "/debts/"+id, http.StatusSeeOther)
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.service.DeleteDebt(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(r.Context(), "Debt delete error", "error", err, "debt_id", id)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.invalidateShare(r, id)
	slog.InfoContext(r.Context(), "Debt deleted", "debt_id", id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleShareLink returns the public URL for a debt's read-only view.
func (s *Server) handleShareLink(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := s.service.Get(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(r.Context(), "Share link read error", "error", err, "debt_id", id)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"url": services.ShareLink(requestOrigin(r), id),
	})
}
