package catalog

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/erazemk/popis/internal/model"
)

// DefaultRecentLimit is the number of items RecentItems returns for a
// non-positive limit.
const DefaultRecentLimit = 5

// CreateItem appends a new item and returns it with its id and timestamps
// filled in. Input is not validated.
func (r *Repository) CreateItem(ctx context.Context, item model.Item) (model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	now := r.now()
	item = item.Clone()
	if item.ID == "" {
		item.ID = r.newID()
	}
	if item.DateAdded.IsZero() {
		item.DateAdded = now
	}
	if item.LastModified.Before(item.DateAdded) {
		item.LastModified = item.DateAdded
	}

	r.items = append(r.items, item)
	if err := r.commit(ctx, "creating item", r.all()); err != nil {
		return item.Clone(), err
	}

	r.recordCreated(ctx, item)
	return item.Clone(), nil
}

// recordCreated bumps the lifetime counters in the app state.
func (r *Repository) recordCreated(ctx context.Context, item model.Item) {
	state, err := r.store.LoadAppState(ctx)
	if err != nil {
		slog.Warn("failed to load app state", "error", err)
		return
	}
	state.TotalItemsCreated++
	if state.FirstItemDate == nil {
		added := item.DateAdded
		state.FirstItemDate = &added
	}
	if err := r.store.SaveAppState(ctx, state); err != nil {
		slog.Warn("failed to save app state", "error", err)
	}
}

// UpdateItem replaces the item with the same id and bumps its LastModified.
// Unknown ids are ignored.
func (r *Repository) UpdateItem(ctx context.Context, item model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	i := r.indexOfItem(item.ID)
	if i < 0 {
		return nil
	}

	item = item.Clone()
	item.LastModified = r.now()
	if item.DateAdded.IsZero() {
		item.DateAdded = r.items[i].DateAdded
	}
	r.items[i] = item
	return r.commit(ctx, "updating item", r.all())
}

// ModifyItem applies fn to the item with the given id while holding the
// repository lock, then commits the result and returns it. Changes made by
// fn to ID and DateAdded are discarded. If fn returns an error nothing is
// committed and the error is returned unchanged.
func (r *Repository) ModifyItem(ctx context.Context, id string, fn func(*model.Item) error) (model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	i := r.indexOfItem(id)
	if i < 0 {
		return model.Item{}, ErrItemNotFound
	}

	item := r.items[i].Clone()
	if err := fn(&item); err != nil {
		return model.Item{}, err
	}
	item.ID = r.items[i].ID
	item.DateAdded = r.items[i].DateAdded
	item.LastModified = r.now()

	r.items[i] = item.Clone()
	if err := r.commit(ctx, "modifying item", r.all()); err != nil {
		return item, err
	}
	return item, nil
}

// DeleteItem removes one item and releases its photos.
func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	return r.DeleteItems(ctx, []string{id})
}

// DeleteItems removes every item whose id is in ids and releases their
// photos. Unknown ids are ignored.
func (r *Repository) DeleteItems(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}

	var removed []model.Item
	r.items = slices.DeleteFunc(r.items, func(it model.Item) bool {
		if doomed[it.ID] {
			removed = append(removed, it)
			return true
		}
		return false
	})
	if len(removed) == 0 {
		return nil
	}

	for _, it := range removed {
		r.releasePhotos(it.PhotoIDs)
	}
	return r.commit(ctx, "deleting items", r.all())
}

func (r *Repository) releasePhotos(ids []string) {
	for _, id := range ids {
		if err := r.photos.Delete(id); err != nil {
			slog.Warn("failed to delete photo", "photo", id, "error", err)
		}
	}
}

// UpdateCategoryForItems moves the given items to categoryID in one commit.
func (r *Repository) UpdateCategoryForItems(ctx context.Context, ids []string, categoryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	if r.reassign(ids, categoryID) == 0 {
		return nil
	}
	return r.commit(ctx, "moving items", r.all())
}

// reassign sets the category of the given items and returns how many changed.
func (r *Repository) reassign(ids []string, categoryID string) int {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	now := r.now()
	n := 0
	for i := range r.items {
		if want[r.items[i].ID] {
			r.items[i].CategoryID = categoryID
			r.items[i].LastModified = now
			n++
		}
	}
	return n
}

func (r *Repository) indexOfItem(id string) int {
	return slices.IndexFunc(r.items, func(it model.Item) bool { return it.ID == id })
}

// selectItems returns copies of the items matching keep, in stored order.
func (r *Repository) selectItems(ctx context.Context, keep func(model.Item) bool) []model.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	out := make([]model.Item, 0, len(r.items))
	for _, it := range r.items {
		if keep == nil || keep(it) {
			out = append(out, it.Clone())
		}
	}
	return out
}

// Items returns all items in stored order.
func (r *Repository) Items(ctx context.Context) []model.Item {
	return r.selectItems(ctx, nil)
}

// Item returns the item with the given id.
func (r *Repository) Item(ctx context.Context, id string) (model.Item, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	if i := r.indexOfItem(id); i >= 0 {
		return r.items[i].Clone(), true
	}
	return model.Item{}, false
}

// ItemsInCategory returns the items assigned to categoryID.
func (r *Repository) ItemsInCategory(ctx context.Context, categoryID string) []model.Item {
	return r.selectItems(ctx, func(it model.Item) bool { return it.CategoryID == categoryID })
}

// ImportantItems returns the items flagged as important.
func (r *Repository) ImportantItems(ctx context.Context) []model.Item {
	return r.selectItems(ctx, func(it model.Item) bool { return it.IsImportant })
}

// ItemsWithPhotos returns the items with at least one photo.
func (r *Repository) ItemsWithPhotos(ctx context.Context) []model.Item {
	return r.selectItems(ctx, func(it model.Item) bool { return it.HasPhotos() })
}

// ItemsWithoutPhotos returns the items with no photos.
func (r *Repository) ItemsWithoutPhotos(ctx context.Context) []model.Item {
	return r.selectItems(ctx, func(it model.Item) bool { return !it.HasPhotos() })
}

// RecentItems returns up to limit items, newest first.
func (r *Repository) RecentItems(ctx context.Context, limit int) []model.Item {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	items := r.selectItems(ctx, nil)
	slices.SortStableFunc(items, func(a, b model.Item) int {
		return b.DateAdded.Compare(a.DateAdded)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// UniqueLocations returns the distinct non-empty item locations, sorted.
func (r *Repository) UniqueLocations(ctx context.Context) []string {
	items := r.selectItems(ctx, func(it model.Item) bool { return it.Location != "" })

	locations := make([]string, 0, len(items))
	for _, it := range items {
		locations = append(locations, it.Location)
	}
	slices.SortFunc(locations, cmp.Compare[string])
	return slices.Compact(locations)
}

// Snapshot returns copies of all three collections from one consistent view.
func (r *Repository) Snapshot(ctx context.Context) ([]model.Item, []model.Category, []model.Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	items := make([]model.Item, len(r.items))
	for i, it := range r.items {
		items[i] = it.Clone()
	}
	categories := make([]model.Category, len(r.categories))
	for i, c := range r.categories {
		categories[i] = c.Clone()
	}
	locations := make([]model.Location, len(r.locations))
	for i, l := range r.locations {
		locations[i] = l.Clone()
	}
	return items, categories, locations
}
