// Package query filters, sorts and searches item lists. Every function is
// pure: the input slice is never modified and storage is never touched.
package query

import (
	"slices"
	"strings"
	"time"

	"github.com/erazemk/popis/internal/model"
)

// Criteria holds optional filter predicates. Zero values are pass-through.
type Criteria struct {
	CategoryIDs       []string
	Location          string
	CaseSensitive     bool
	ImportantOnly     bool
	WithPhotosOnly    bool
	WithoutPhotosOnly bool
}

// Filter returns the items matching every set predicate, in input order.
// WithPhotosOnly and WithoutPhotosOnly together match nothing.
func Filter(items []model.Item, c Criteria) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if c.matches(it) {
			out = append(out, it)
		}
	}
	return out
}

func (c Criteria) matches(it model.Item) bool {
	if len(c.CategoryIDs) > 0 && !slices.Contains(c.CategoryIDs, it.CategoryID) {
		return false
	}
	if c.Location != "" && !contains(it.Location, c.Location, c.CaseSensitive) {
		return false
	}
	if c.ImportantOnly && !it.IsImportant {
		return false
	}
	if c.WithPhotosOnly && !it.HasPhotos() {
		return false
	}
	if c.WithoutPhotosOnly && it.HasPhotos() {
		return false
	}
	return true
}

// contains reports whether s contains substr, folding case unless caseSensitive.
func contains(s, substr string, caseSensitive bool) bool {
	if caseSensitive {
		return strings.Contains(s, substr)
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Search returns the items whose name, description, location, notes or
// category name contain q. An empty query returns items unchanged.
func Search(q string, items []model.Item, categories []model.Category, caseSensitive bool) []model.Item {
	if q == "" {
		return items
	}

	names := categoryNames(categories)
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		fields := []string{it.Name, it.Description, it.Location, it.Notes, names[it.CategoryID]}
		if slices.ContainsFunc(fields, func(f string) bool { return contains(f, q, caseSensitive) }) {
			out = append(out, it)
		}
	}
	return out
}

// DateRange bounds DateAdded, both ends inclusive.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t lies within the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// PriceRange bounds PurchasePrice, both ends inclusive.
type PriceRange struct {
	Min float64
	Max float64
}

// Contains reports whether p lies within the range.
func (r PriceRange) Contains(p float64) bool {
	return p >= r.Min && p <= r.Max
}

// Advanced combines a text query, filter criteria and range predicates.
type Advanced struct {
	Query string
	Criteria
	DateRange  *DateRange
	PriceRange *PriceRange
}

// AdvancedSearch applies Search, then Filter, then the range predicates.
// Items without a price never match a price range.
func AdvancedSearch(items []model.Item, categories []model.Category, a Advanced) []model.Item {
	results := Filter(Search(a.Query, items, categories, a.CaseSensitive), a.Criteria)

	if a.DateRange == nil && a.PriceRange == nil {
		return results
	}
	return slices.DeleteFunc(results, func(it model.Item) bool {
		if a.DateRange != nil && !a.DateRange.Contains(it.DateAdded) {
			return true
		}
		if a.PriceRange != nil && (it.PurchasePrice == nil || !a.PriceRange.Contains(*it.PurchasePrice)) {
			return true
		}
		return false
	})
}

func categoryNames(categories []model.Category) map[string]string {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		if _, ok := names[c.ID]; !ok {
			names[c.ID] = c.Name
		}
	}
	return names
}
