package query

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/erazemk/popis/internal/model"
)

// Sort returns a sorted copy of items. Categories resolve category names;
// items whose category is unknown sort as if the name were "".
//
// The sort is stable, so sorting an already sorted list keeps its order.
func Sort(items []model.Item, by model.SortOption, categories []model.Category) []model.Item {
	out := slices.Clone(items)

	// Collators are not safe for concurrent use.
	col := collate.New(language.Und, collate.IgnoreCase)

	switch by {
	case model.SortNameAscending:
		slices.SortStableFunc(out, func(a, b model.Item) int {
			return col.CompareString(a.Name, b.Name)
		})
	case model.SortDateNewest:
		slices.SortStableFunc(out, func(a, b model.Item) int {
			return b.DateAdded.Compare(a.DateAdded)
		})
	case model.SortDateOldest:
		slices.SortStableFunc(out, func(a, b model.Item) int {
			return a.DateAdded.Compare(b.DateAdded)
		})
	case model.SortCategory:
		names := categoryNames(categories)
		slices.SortStableFunc(out, func(a, b model.Item) int {
			return col.CompareString(names[a.CategoryID], names[b.CategoryID])
		})
	case model.SortLocation:
		slices.SortStableFunc(out, func(a, b model.Item) int {
			return col.CompareString(a.Location, b.Location)
		})
	}
	return out
}

// Relevance weights.
const (
	ScoreExactName     = 100
	ScoreNamePrefix    = 50
	ScoreNameContains  = 25
	ScoreDescription   = 10
	ScoreLocation      = 5
	ScoreImportantItem = 2
)

// RelevanceScore ranks how well item matches an already lowercased query.
// Only one of the name scores applies, checked as exact, prefix, contains.
func RelevanceScore(item model.Item, lowercasedQuery string) int {
	q := lowercasedQuery
	name := strings.ToLower(item.Name)

	score := 0
	switch {
	case name == q:
		score += ScoreExactName
	case strings.HasPrefix(name, q):
		score += ScoreNamePrefix
	case strings.Contains(name, q):
		score += ScoreNameContains
	}
	if strings.Contains(strings.ToLower(item.Description), q) {
		score += ScoreDescription
	}
	if strings.Contains(strings.ToLower(item.Location), q) {
		score += ScoreLocation
	}
	if item.IsImportant {
		score += ScoreImportantItem
	}
	return score
}

// SortByRelevance returns a copy of items ordered by descending relevance to
// q. It never drops items.
func SortByRelevance(q string, items []model.Item) []model.Item {
	q = strings.ToLower(q)

	type scored struct {
		item  model.Item
		score int
	}
	ranked := make([]scored, len(items))
	for i, it := range items {
		ranked[i] = scored{it, RelevanceScore(it, q)}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int { return b.score - a.score })

	out := make([]model.Item, len(ranked))
	for i, r := range ranked {
		out[i] = r.item
	}
	return out
}
