package api

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/popis/internal/catalog"
	"github.com/erazemk/popis/internal/history"
	"github.com/erazemk/popis/internal/model"
	"github.com/erazemk/popis/internal/query"
	"github.com/erazemk/popis/internal/store"
)

// sortRelevance orders search results by how well they match the query.
const sortRelevance = "relevance"

// dateLayout is the format of the from and to query parameters.
const dateLayout = "2006-01-02"

// ItemsHandler handles item CRUD endpoints.
type ItemsHandler struct {
	Catalog *catalog.Repository
	Store   *store.Store
	History *history.Recorder
}

type itemRequest struct {
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	CategoryID    string     `json:"category_id"`
	Location      string     `json:"location"`
	IsImportant   bool       `json:"is_important"`
	PurchaseDate  *time.Time `json:"purchase_date"`
	PurchasePrice *float64   `json:"purchase_price"`
	SerialNumber  string     `json:"serial_number"`
	WarrantyInfo  string     `json:"warranty_info"`
	Notes         string     `json:"notes"`
	ColorHex      string     `json:"color_hex"`
}

type moveItemsRequest struct {
	ItemIDs    []string `json:"item_ids"`
	CategoryID string   `json:"category_id"`
}

// validate checks the fields the catalog stores as given.
func (req itemRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return errors.New("name required")
	}
	if req.PurchasePrice != nil && *req.PurchasePrice < 0 {
		return errors.New("purchase_price must not be negative")
	}
	return nil
}

// apply copies the editable fields onto item. Photos and timestamps are
// left alone.
func (req itemRequest) apply(item *model.Item) {
	item.Name = strings.TrimSpace(req.Name)
	item.Description = req.Description
	item.CategoryID = req.CategoryID
	item.Location = strings.TrimSpace(req.Location)
	item.IsImportant = req.IsImportant
	item.PurchaseDate = req.PurchaseDate
	item.PurchasePrice = req.PurchasePrice
	item.SerialNumber = req.SerialNumber
	item.WarrantyInfo = req.WarrantyInfo
	item.Notes = req.Notes
	item.ColorHex = req.ColorHex
}

// resolveCategory fills in the Other category when none is given and
// rejects unknown ids.
func (h *ItemsHandler) resolveCategory(r *http.Request, req *itemRequest) error {
	if req.CategoryID == "" {
		other, ok := h.Catalog.OtherCategory(r.Context())
		if !ok {
			return fmt.Errorf("category_id required")
		}
		req.CategoryID = other.ID
		return nil
	}
	if _, ok := h.Catalog.Category(r.Context(), req.CategoryID); !ok {
		return fmt.Errorf("unknown category %q", req.CategoryID)
	}
	return nil
}

// parseSearch builds a search from the query parameters of r.
func parseSearch(r *http.Request, settings model.AppSettings) (query.Advanced, string, error) {
	v := r.URL.Query()
	a := query.Advanced{
		Query: strings.TrimSpace(v.Get("q")),
		Criteria: query.Criteria{
			CategoryIDs:   v["category"],
			Location:      v.Get("location"),
			CaseSensitive: settings.CaseSensitiveSearch,
		},
	}

	if s := v.Get("important"); s != "" {
		important, err := strconv.ParseBool(s)
		if err != nil {
			return a, "", fmt.Errorf("invalid important value %q", s)
		}
		a.ImportantOnly = important
	}

	switch s := v.Get("photos"); s {
	case "":
	case "with":
		a.WithPhotosOnly = true
	case "without":
		a.WithoutPhotosOnly = true
	default:
		return a, "", fmt.Errorf("photos must be 'with' or 'without'")
	}

	from, to := v.Get("from"), v.Get("to")
	if from != "" || to != "" {
		dr := query.DateRange{To: time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)}
		if from != "" {
			t, err := time.Parse(dateLayout, from)
			if err != nil {
				return a, "", fmt.Errorf("invalid from date %q", from)
			}
			dr.From = t
		}
		if to != "" {
			t, err := time.Parse(dateLayout, to)
			if err != nil {
				return a, "", fmt.Errorf("invalid to date %q", to)
			}
			dr.To = t.Add(24*time.Hour - time.Nanosecond)
		}
		a.DateRange = &dr
	}

	minPrice, maxPrice := v.Get("min_price"), v.Get("max_price")
	if minPrice != "" || maxPrice != "" {
		pr := query.PriceRange{Max: math.MaxFloat64}
		if minPrice != "" {
			p, err := strconv.ParseFloat(minPrice, 64)
			if err != nil {
				return a, "", fmt.Errorf("invalid min_price %q", minPrice)
			}
			pr.Min = p
		}
		if maxPrice != "" {
			p, err := strconv.ParseFloat(maxPrice, 64)
			if err != nil {
				return a, "", fmt.Errorf("invalid max_price %q", maxPrice)
			}
			pr.Max = p
		}
		a.PriceRange = &pr
	}

	sortBy := v.Get("sort")
	switch {
	case sortBy == "" && a.Query != "":
		sortBy = sortRelevance
	case sortBy == "":
		sortBy = string(settings.DefaultSortOption)
	case sortBy == sortRelevance:
	default:
		if _, err := model.ParseSortOption(sortBy); err != nil {
			return a, "", err
		}
	}
	return a, sortBy, nil
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.LoadSettings(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	search, sortBy, err := parseSearch(r, settings)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, categories, _ := h.Catalog.Snapshot(r.Context())
	items = query.AdvancedSearch(items, categories, search)
	if sortBy == sortRelevance {
		items = query.SortByRelevance(search.Query, items)
	} else {
		items = query.Sort(items, model.SortOption(sortBy), categories)
	}

	if search.Query != "" {
		if err := h.History.Add(r.Context(), search.Query); err != nil {
			slog.Warn("failed to record search", "error", err)
		}
	}

	jsonResponse(w, http.StatusOK, items)
}

// Recent handles GET /api/items/recent.
func (h *ItemsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	jsonResponse(w, http.StatusOK, h.Catalog.RecentItems(r.Context(), limit))
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := req.validate(); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.resolveCategory(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	var item model.Item
	req.apply(&item)
	item.PhotoIDs = []string{}

	created, err := h.Catalog.CreateItem(r.Context(), item)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	slog.Info("item created", "item", created.ID, "name", created.Name)
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.Catalog.Item(r.Context(), r.PathValue("id"))
	if !ok {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.Catalog.Item(r.Context(), id); !ok {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := req.validate(); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.resolveCategory(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.Catalog.ModifyItem(r.Context(), id, func(it *model.Item) error {
		req.apply(it)
		return nil
	})
	if errors.Is(err, catalog.ErrItemNotFound) {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.Catalog.Item(r.Context(), id); !ok {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := h.Catalog.DeleteItem(r.Context(), id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	slog.Info("item deleted", "item", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// Move handles POST /api/items/move.
func (h *ItemsHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req moveItemsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.ItemIDs) == 0 || req.CategoryID == "" {
		jsonError(w, http.StatusBadRequest, "item_ids and category_id required")
		return
	}
	if _, ok := h.Catalog.Category(r.Context(), req.CategoryID); !ok {
		jsonError(w, http.StatusBadRequest, "unknown category")
		return
	}

	if err := h.Catalog.UpdateCategoryForItems(r.Context(), req.ItemIDs, req.CategoryID); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to move items")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "items moved"})
}
