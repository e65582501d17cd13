package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// maxImportBytes bounds the import payload size.
const maxImportBytes = 1 << 20

// handleExport streams the whole collection as a JSON document.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	payload, err := s.service.Export(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Export error", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="pagos-export.json"`)
	_, _ = w.Write(payload)
}

// handleImport validates an uploaded export document against the schema and
// inserts its debts as new records.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	imported, err := s.service.Import(r.Context(), body)
	if err != nil {
		slog.WarnContext(r.Context(), "Import rejected", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	slog.InfoContext(r.Context(), "Import completed", "debts_imported", imported)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"imported": imported})
}
