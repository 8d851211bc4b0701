package catalog

import (
	"context"
	"slices"

	"github.com/erazemk/popis/internal/model"
	"github.com/erazemk/popis/internal/store"
)

// CreateLocation appends a location and returns it with its id assigned.
func (r *Repository) CreateLocation(ctx context.Context, l model.Location) (model.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	if l.ID == "" {
		l.ID = r.newID()
	}
	r.locations = append(r.locations, l.Clone())
	r.refreshLocationCounts()
	created := r.locations[len(r.locations)-1].Clone()
	return created, r.commit(ctx, "creating location", store.Batch{}.WithLocations(r.locations))
}

// UpdateLocation replaces the location with the same id. A rename is carried
// into every item whose location equals the old name exactly. Unknown ids
// are ignored.
func (r *Repository) UpdateLocation(ctx context.Context, l model.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	i := r.indexOfLocation(l.ID)
	if i < 0 {
		return nil
	}

	if oldName := r.locations[i].Name; oldName != l.Name {
		r.relabelItems(oldName, l.Name)
	}
	r.locations[i] = l.Clone()
	return r.commit(ctx, "updating location", r.all())
}

// DeleteLocation removes a location and clears it from every item that
// referenced it by name. Items themselves are never removed.
func (r *Repository) DeleteLocation(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	i := r.indexOfLocation(id)
	if i < 0 {
		return nil
	}
	if len(r.locations) == 1 {
		return ErrLastLocation
	}

	r.relabelItems(r.locations[i].Name, "")
	r.locations = slices.Delete(r.locations, i, i+1)
	return r.commit(ctx, "deleting location", r.all())
}

// relabelItems sets the location of every item at from to to.
func (r *Repository) relabelItems(from, to string) {
	now := r.now()
	for i := range r.items {
		if r.items[i].Location == from {
			r.items[i].Location = to
			r.items[i].LastModified = now
		}
	}
}

// RefreshLocationCounts recomputes every location's item count and last use
// and persists them.
func (r *Repository) RefreshLocationCounts(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	r.refreshLocationCounts()
	return r.commit(ctx, "refreshing location counts", store.Batch{}.WithLocations(r.locations))
}

// refreshLocationCounts sets ItemCount and, for used locations, LastUsed to
// the newest DateAdded among matching items. Unused locations keep LastUsed.
func (r *Repository) refreshLocationCounts() {
	for i := range r.locations {
		name := r.locations[i].Name
		count := 0
		var last model.Item
		for _, it := range r.items {
			if it.Location != name {
				continue
			}
			if count == 0 || it.DateAdded.After(last.DateAdded) {
				last = it
			}
			count++
		}

		r.locations[i].ItemCount = count
		if count > 0 {
			used := last.DateAdded
			r.locations[i].LastUsed = &used
		}
	}
}

func (r *Repository) indexOfLocation(id string) int {
	return slices.IndexFunc(r.locations, func(l model.Location) bool { return l.ID == id })
}

func (r *Repository) selectLocations(ctx context.Context, keep func(model.Location) bool) []model.Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	out := make([]model.Location, 0, len(r.locations))
	for _, l := range r.locations {
		if keep == nil || keep(l) {
			out = append(out, l.Clone())
		}
	}
	return out
}

// Locations returns all locations in stored order.
func (r *Repository) Locations(ctx context.Context) []model.Location {
	return r.selectLocations(ctx, nil)
}

// DefaultLocations returns the built-in locations.
func (r *Repository) DefaultLocations(ctx context.Context) []model.Location {
	return r.selectLocations(ctx, func(l model.Location) bool { return l.IsDefault })
}

// CustomLocations returns the user-created locations.
func (r *Repository) CustomLocations(ctx context.Context) []model.Location {
	return r.selectLocations(ctx, func(l model.Location) bool { return !l.IsDefault })
}

// Location returns the location with the given id.
func (r *Repository) Location(ctx context.Context, id string) (model.Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	if i := r.indexOfLocation(id); i >= 0 {
		return r.locations[i].Clone(), true
	}
	return model.Location{}, false
}

// LocationByName returns the first location with exactly the given name.
func (r *Repository) LocationByName(ctx context.Context, name string) (model.Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	i := slices.IndexFunc(r.locations, func(l model.Location) bool { return l.Name == name })
	if i < 0 {
		return model.Location{}, false
	}
	return r.locations[i].Clone(), true
}

// OtherLocation returns the built-in "Other" location. The built-in set has
// none, so this only finds one carried over from older data.
func (r *Repository) OtherLocation(ctx context.Context) (model.Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sync(ctx)

	i := slices.IndexFunc(r.locations, func(l model.Location) bool {
		return l.Name == model.OtherLocationName && l.IsDefault
	})
	if i < 0 {
		return model.Location{}, false
	}
	return r.locations[i].Clone(), true
}
