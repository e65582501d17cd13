package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"pagos/internal/core"
)

// debtEvent is the wire shape pushed to subscribed browsers. Every push
// carries the full collection with derived values precomputed.
type debtEvent struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Total     core.Money     `json:"total"`
	Paid      core.Money     `json:"paid"`
	Remaining core.Money     `json:"remaining"`
	Percent   int            `json:"percent"`
	Payments  []core.Payment `json:"payments"`
}

func newDebtEvents(debts []core.Debt) []debtEvent {
	events := make([]debtEvent, 0, len(debts))
	for _, d := range debts {
		events = append(events, debtEvent{
			ID:        d.ID,
			Name:      d.Name,
			Total:     d.Total,
			Paid:      core.TotalPaid(d),
			Remaining: core.Remaining(d),
			Percent:   core.Percent(d),
			Payments:  d.Payments,
		})
	}
	return events
}

// handleEvents streams collection snapshots over server-sent events. Each
// client holds one store subscription, released when it disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	snapshots, release := s.service.Watch(r.Context())
	defer release()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, open := <-snapshots:
			if !open {
				return
			}
			payload, err := json.Marshal(newDebtEvents(snap))
			if err != nil {
				slog.ErrorContext(r.Context(), "Snapshot marshal error", "error", err)
				continue
			}
			if _, err := w.Write([]byte("event: debts\ndata: " + string(payload) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
