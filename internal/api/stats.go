package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/popis/internal/catalog"
	"github.com/erazemk/popis/internal/export"
	"github.com/erazemk/popis/internal/stats"
)

// StatsHandler serves dashboard figures and the CSV export.
type StatsHandler struct {
	Catalog *catalog.Repository
}

// Summary handles GET /api/stats.
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	items, categories, _ := h.Catalog.Snapshot(r.Context())
	jsonResponse(w, http.StatusOK, stats.Compute(items, categories))
}

// Category handles GET /api/categories/{id}/stats.
func (h *StatsHandler) Category(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.Catalog.Category(r.Context(), id); !ok {
		jsonError(w, http.StatusNotFound, "category not found")
		return
	}
	jsonResponse(w, http.StatusOK, stats.ForCategory(h.Catalog.Items(r.Context()), id))
}

// Export handles GET /api/export.
func (h *StatsHandler) Export(w http.ResponseWriter, r *http.Request) {
	items, categories, _ := h.Catalog.Snapshot(r.Context())

	name := fmt.Sprintf("popis-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := export.WriteCSV(w, items, categories); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}
