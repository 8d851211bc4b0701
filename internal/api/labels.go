package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/popis/internal/catalog"
	"github.com/erazemk/popis/internal/model"
)

// labelRequest is the body for creating or updating a category or location.
type labelRequest struct {
	Name     string `json:"name"`
	IconName string `json:"icon_name"`
	ColorHex string `json:"color_hex"`
}

func decodeLabel(w http.ResponseWriter, r *http.Request) (labelRequest, bool) {
	var req labelRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return req, false
	}
	return req, true
}

// CategoriesHandler handles category endpoints.
type CategoriesHandler struct {
	Catalog *catalog.Repository
}

// List handles GET /api/categories. ?kind=default or ?kind=custom narrows
// the list.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("kind") {
	case "":
		jsonResponse(w, http.StatusOK, h.Catalog.Categories(r.Context()))
	case "default":
		jsonResponse(w, http.StatusOK, h.Catalog.DefaultCategories(r.Context()))
	case "custom":
		jsonResponse(w, http.StatusOK, h.Catalog.CustomCategories(r.Context()))
	default:
		jsonError(w, http.StatusBadRequest, "kind must be 'default' or 'custom'")
	}
}

// Create handles POST /api/categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLabel(w, r)
	if !ok {
		return
	}

	created, err := h.Catalog.CreateCategory(r.Context(), model.Category{
		Name:     req.Name,
		IconName: req.IconName,
		ColorHex: req.ColorHex,
	})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	slog.Info("category created", "category", created.ID, "name", created.Name)
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/categories/{id}.
func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.Catalog.Category(r.Context(), r.PathValue("id"))
	if !ok {
		jsonError(w, http.StatusNotFound, "category not found")
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// Update handles PUT /api/categories/{id}.
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := h.Catalog.Category(r.Context(), r.PathValue("id"))
	if !ok {
		jsonError(w, http.StatusNotFound, "category not found")
		return
	}

	req, ok := decodeLabel(w, r)
	if !ok {
		return
	}
	c.Name, c.IconName, c.ColorHex = req.Name, req.IconName, req.ColorHex

	if err := h.Catalog.UpdateCategory(r.Context(), c); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	updated, _ := h.Catalog.Category(r.Context(), c.ID)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/categories/{id}. Items are moved to the
// category named by ?move_to, or to the fallback target when it is absent.
// ?move_to=none leaves them pointing at the deleted id.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.Catalog.Category(r.Context(), id); !ok {
		jsonError(w, http.StatusNotFound, "category not found")
		return
	}

	moveTo := r.URL.Query().Get("move_to")
	switch moveTo {
	case "":
		moveTo = h.Catalog.ReassignmentTarget(r.Context(), id)
	case "none":
		moveTo = ""
	default:
		if moveTo == id {
			jsonError(w, http.StatusBadRequest, "cannot move items into the deleted category")
			return
		}
		if _, ok := h.Catalog.Category(r.Context(), moveTo); !ok {
			jsonError(w, http.StatusBadRequest, "unknown move_to category")
			return
		}
	}

	err := h.Catalog.DeleteCategory(r.Context(), id, moveTo)
	if errors.Is(err, catalog.ErrLastCategory) {
		jsonError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	slog.Info("category deleted", "category", id, "move_to", moveTo)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "category deleted", "move_to": moveTo})
}

// LocationsHandler handles location endpoints.
type LocationsHandler struct {
	Catalog *catalog.Repository
}

// List handles GET /api/locations. ?kind=default, ?kind=custom and
// ?kind=used are supported, the last returning the distinct item locations.
func (h *LocationsHandler) List(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("kind") {
	case "":
		jsonResponse(w, http.StatusOK, h.Catalog.Locations(r.Context()))
	case "default":
		jsonResponse(w, http.StatusOK, h.Catalog.DefaultLocations(r.Context()))
	case "custom":
		jsonResponse(w, http.StatusOK, h.Catalog.CustomLocations(r.Context()))
	case "used":
		jsonResponse(w, http.StatusOK, h.Catalog.UniqueLocations(r.Context()))
	default:
		jsonError(w, http.StatusBadRequest, "kind must be 'default', 'custom' or 'used'")
	}
}

// Create handles POST /api/locations.
func (h *LocationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLabel(w, r)
	if !ok {
		return
	}

	if _, exists := h.Catalog.LocationByName(r.Context(), req.Name); exists {
		jsonError(w, http.StatusConflict, "location already exists")
		return
	}

	created, err := h.Catalog.CreateLocation(r.Context(), model.Location{
		Name:     req.Name,
		IconName: req.IconName,
		ColorHex: req.ColorHex,
	})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create location")
		return
	}

	slog.Info("location created", "location", created.ID, "name", created.Name)
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/locations/{id}.
func (h *LocationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, ok := h.Catalog.Location(r.Context(), r.PathValue("id"))
	if !ok {
		jsonError(w, http.StatusNotFound, "location not found")
		return
	}
	jsonResponse(w, http.StatusOK, l)
}

// Update handles PUT /api/locations/{id}. Renaming carries over to every
// item stored at the old name.
func (h *LocationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	l, ok := h.Catalog.Location(r.Context(), r.PathValue("id"))
	if !ok {
		jsonError(w, http.StatusNotFound, "location not found")
		return
	}

	req, ok := decodeLabel(w, r)
	if !ok {
		return
	}
	if other, exists := h.Catalog.LocationByName(r.Context(), req.Name); exists && other.ID != l.ID {
		jsonError(w, http.StatusConflict, "location already exists")
		return
	}
	l.Name, l.IconName, l.ColorHex = req.Name, req.IconName, req.ColorHex

	if err := h.Catalog.UpdateLocation(r.Context(), l); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update location")
		return
	}

	updated, _ := h.Catalog.Location(r.Context(), l.ID)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/locations/{id}.
func (h *LocationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.Catalog.Location(r.Context(), id); !ok {
		jsonError(w, http.StatusNotFound, "location not found")
		return
	}

	err := h.Catalog.DeleteLocation(r.Context(), id)
	if errors.Is(err, catalog.ErrLastLocation) {
		jsonError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete location")
		return
	}

	slog.Info("location deleted", "location", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "location deleted"})
}
