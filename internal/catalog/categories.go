package catalog

import (
	"context"
	"slices"

	"github.com/erazemk/popis/internal/model"
	"github.com/erazemk/popis/internal/store"
)

// CreateCategory appends a category and returns it with its id assigned.
func (r *Repository) CreateCategory(ctx context.Context, c model.Category) (model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	if c.ID == "" {
		c.ID = r.newID()
	}
	r.categories = append(r.categories, c.Clone())
	r.refreshCategoryCounts()
	created := r.categories[len(r.categories)-1].Clone()
	return created, r.commit(ctx, "creating category", store.Batch{}.WithCategories(r.categories))
}

// UpdateCategory replaces the category with the same id. Unknown ids are
// ignored. The cached item count is recomputed, not taken from c.
func (r *Repository) UpdateCategory(ctx context.Context, c model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	i := r.indexOfCategory(c.ID)
	if i < 0 {
		return nil
	}
	r.categories[i] = c.Clone()
	r.refreshCategoryCounts()
	return r.commit(ctx, "updating category", store.Batch{}.WithCategories(r.categories))
}

// DeleteCategory removes a category. When moveTo is non-empty every item of
// the deleted category is reassigned to it; otherwise those items keep the
// dangling id. Both changes are committed together.
func (r *Repository) DeleteCategory(ctx context.Context, id, moveTo string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	i := r.indexOfCategory(id)
	if i < 0 {
		return nil
	}
	if len(r.categories) == 1 {
		return ErrLastCategory
	}

	r.categories = slices.Delete(r.categories, i, i+1)
	if moveTo != "" && moveTo != id {
		var ids []string
		for _, it := range r.items {
			if it.CategoryID == id {
				ids = append(ids, it.ID)
			}
		}
		r.reassign(ids, moveTo)
	}
	return r.commit(ctx, "deleting category", r.all())
}

// ReassignmentTarget picks where the items of a deleted category go when the
// caller names no destination: the built-in "Other" category, else the first
// other category, else "" (no reassignment).
func (r *Repository) ReassignmentTarget(ctx context.Context, deletedID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	if other, ok := r.otherCategory(); ok && other.ID != deletedID {
		return other.ID
	}
	for _, c := range r.categories {
		if c.ID != deletedID {
			return c.ID
		}
	}
	return ""
}

// RefreshCategoryCounts recomputes every category's item count and persists them.
func (r *Repository) RefreshCategoryCounts(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	r.refreshCategoryCounts()
	return r.commit(ctx, "refreshing category counts", store.Batch{}.WithCategories(r.categories))
}

func (r *Repository) refreshCategoryCounts() {
	counts := make(map[string]int, len(r.categories))
	for _, it := range r.items {
		counts[it.CategoryID]++
	}
	for i := range r.categories {
		r.categories[i].ItemCount = counts[r.categories[i].ID]
	}
}

func (r *Repository) indexOfCategory(id string) int {
	return slices.IndexFunc(r.categories, func(c model.Category) bool { return c.ID == id })
}

func (r *Repository) otherCategory() (model.Category, bool) {
	i := slices.IndexFunc(r.categories, func(c model.Category) bool {
		return c.Name == model.OtherCategoryName && c.IsDefault
	})
	if i < 0 {
		return model.Category{}, false
	}
	return r.categories[i].Clone(), true
}

func (r *Repository) selectCategories(ctx context.Context, keep func(model.Category) bool) []model.Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	out := make([]model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		if keep == nil || keep(c) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// Categories returns all categories in stored order.
func (r *Repository) Categories(ctx context.Context) []model.Category {
	return r.selectCategories(ctx, nil)
}

// DefaultCategories returns the built-in categories.
func (r *Repository) DefaultCategories(ctx context.Context) []model.Category {
	return r.selectCategories(ctx, func(c model.Category) bool { return c.IsDefault })
}

// CustomCategories returns the user-created categories.
func (r *Repository) CustomCategories(ctx context.Context) []model.Category {
	return r.selectCategories(ctx, func(c model.Category) bool { return !c.IsDefault })
}

// Category returns the category with the given id.
func (r *Repository) Category(ctx context.Context, id string) (model.Category, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	if i := r.indexOfCategory(id); i >= 0 {
		return r.categories[i].Clone(), true
	}
	return model.Category{}, false
}

// OtherCategory returns the built-in "Other" category.
func (r *Repository) OtherCategory(ctx context.Context) (model.Category, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	return r.otherCategory()
}
