package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/popis/internal/catalog"
	"github.com/erazemk/popis/internal/history"
	"github.com/erazemk/popis/internal/model"
	"github.com/erazemk/popis/internal/store"
)

// SettingsHandler handles settings, search history and reset.
type SettingsHandler struct {
	Catalog *catalog.Repository
	Store   *store.Store
	History *history.Recorder
}

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.LoadSettings(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	jsonResponse(w, http.StatusOK, settings)
}

// Update handles PUT /api/settings. Fields missing from the body keep
// their current value.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.LoadSettings(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	if err := decodeJSON(r, &settings); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := model.ParseSortOption(string(settings.DefaultSortOption)); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := model.ParsePhotoQuality(string(settings.PhotoQuality)); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	settings.Normalize()

	if err := h.Store.SaveSettings(r.Context(), settings); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	slog.Info("settings updated")
	jsonResponse(w, http.StatusOK, settings)
}

// SearchHistory handles GET /api/history.
func (h *SettingsHandler) SearchHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.History.Entries(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load search history")
		return
	}
	jsonResponse(w, http.StatusOK, entries)
}

// ClearHistory handles DELETE /api/history.
func (h *SettingsHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.History.Clear(r.Context()); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to clear search history")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "search history cleared"})
}

// Reset handles POST /api/reset. The body must be {"confirm": true}.
func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil || !req.Confirm {
		jsonError(w, http.StatusBadRequest, "reset requires {\"confirm\": true}")
		return
	}

	if err := h.Catalog.Reset(r.Context()); err != nil {
		slog.Error("failed to reset catalog", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to reset catalog")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "all data cleared"})
}
