// Package stats derives dashboard figures from the catalog collections.
package stats

import "github.com/erazemk/popis/internal/model"

// Summary holds the dashboard figures for the whole catalog.
type Summary struct {
	TotalItems         int             `json:"total_items"`
	TotalCategories    int             `json:"total_categories"`
	ItemsWithPhotos    int             `json:"items_with_photos"`
	UniqueLocations    int             `json:"unique_locations"`
	MostCommonCategory *model.Category `json:"most_common_category,omitempty"`
	MostRecentItem     *model.Item     `json:"most_recent_item,omitempty"`
}

// Compute builds a Summary. The most common category is the one with the
// most items, the first one seen winning ties; it is nil when that id does
// not resolve to a category.
func Compute(items []model.Item, categories []model.Category) Summary {
	s := Summary{
		TotalItems:      len(items),
		TotalCategories: len(categories),
		ItemsWithPhotos: countWithPhotos(items),
		UniqueLocations: countLocations(items),
		MostRecentItem:  mostRecent(items),
	}

	if id, ok := mostCommonCategoryID(items); ok {
		for _, c := range categories {
			if c.ID == id {
				s.MostCommonCategory = &c
				break
			}
		}
	}
	return s
}

// CategoryStatistics holds the figures for a single category.
type CategoryStatistics struct {
	TotalItems      int         `json:"total_items"`
	ItemsWithPhotos int         `json:"items_with_photos"`
	UniqueLocations int         `json:"unique_locations"`
	MostRecentItem  *model.Item `json:"most_recent_item,omitempty"`
}

// ForCategory builds the statistics of the items in one category.
func ForCategory(items []model.Item, categoryID string) CategoryStatistics {
	var in []model.Item
	for _, it := range items {
		if it.CategoryID == categoryID {
			in = append(in, it)
		}
	}
	return CategoryStatistics{
		TotalItems:      len(in),
		ItemsWithPhotos: countWithPhotos(in),
		UniqueLocations: countLocations(in),
		MostRecentItem:  mostRecent(in),
	}
}

func countWithPhotos(items []model.Item) int {
	n := 0
	for _, it := range items {
		if it.HasPhotos() {
			n++
		}
	}
	return n
}

func countLocations(items []model.Item) int {
	seen := make(map[string]struct{})
	for _, it := range items {
		if it.Location != "" {
			seen[it.Location] = struct{}{}
		}
	}
	return len(seen)
}

// mostRecent returns the item with the latest DateAdded, the first one seen
// winning ties.
func mostRecent(items []model.Item) *model.Item {
	if len(items) == 0 {
		return nil
	}
	best := 0
	for i, it := range items {
		if it.DateAdded.After(items[best].DateAdded) {
			best = i
		}
	}
	item := items[best].Clone()
	return &item
}

func mostCommonCategoryID(items []model.Item) (string, bool) {
	counts := make(map[string]int)
	var order []string
	for _, it := range items {
		if counts[it.CategoryID] == 0 {
			order = append(order, it.CategoryID)
		}
		counts[it.CategoryID]++
	}

	best, bestCount := "", 0
	for _, id := range order {
		if counts[id] > bestCount {
			best, bestCount = id, counts[id]
		}
	}
	return best, bestCount > 0
}
