// Package catalog owns the in-memory item, category and location
// collections and keeps them consistent with the record store.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/popis/internal/model"
	"github.com/erazemk/popis/internal/store"
)

var (
	// ErrLastCategory is returned when deleting the only remaining category.
	ErrLastCategory = errors.New("cannot delete the last category")
	// ErrLastLocation is returned when deleting the only remaining location.
	ErrLastLocation = errors.New("cannot delete the last location")
	// ErrItemNotFound is returned by ModifyItem for an unknown id.
	ErrItemNotFound = errors.New("item not found")
)

// RecordStore is the persistence the repository reads from and commits to.
type RecordStore interface {
	LoadItems(ctx context.Context) ([]model.Item, error)
	LoadCategories(ctx context.Context) ([]model.Category, error)
	LoadLocations(ctx context.Context) ([]model.Location, error)
	Commit(ctx context.Context, b store.Batch) error
	Revision(ctx context.Context) (int64, error)
	LoadAppState(ctx context.Context) (model.AppState, error)
	SaveAppState(ctx context.Context, state model.AppState) error
	Clear(ctx context.Context) error
}

// PhotoStore releases photo files owned by items.
type PhotoStore interface {
	Delete(id string) error
	Clear() error
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator sets the function used to assign ids to new records.
func WithIDGenerator(newID func() string) Option {
	return func(r *Repository) { r.newID = newID }
}

// Repository is the single owner of the catalog collections. Every mutation
// goes through it so cached counts stay in line with the persisted records.
//
// Reads reload from the store whenever its revision moved, so independent
// repositories over the same database observe each other's commits.
type Repository struct {
	mu     sync.Mutex
	store  RecordStore
	photos PhotoStore
	now    func() time.Time
	newID  func() string

	loaded     bool
	revision   int64
	items      []model.Item
	categories []model.Category
	locations  []model.Location
}

// New creates a repository and loads the current collections, seeding the
// built-in categories and locations into an empty catalog.
func New(ctx context.Context, rs RecordStore, photos PhotoStore, opts ...Option) (*Repository, error) {
	r := &Repository{
		store:  rs,
		photos: photos,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.reload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// sync reloads the collections when another commit happened since the last
// load. On store errors the in-memory state is kept.
func (r *Repository) sync(ctx context.Context) {
	if r.loaded {
		rev, err := r.store.Revision(ctx)
		if err != nil {
			slog.Warn("failed to read catalog revision, serving cached state", "error", err)
			return
		}
		if rev == r.revision {
			return
		}
	}
	if err := r.reload(ctx); err != nil {
		slog.Warn("failed to reload catalog, serving cached state", "error", err)
	}
}

func (r *Repository) reload(ctx context.Context) error {
	rev, err := r.store.Revision(ctx)
	if err != nil {
		return fmt.Errorf("reading revision: %w", err)
	}

	items, err := r.store.LoadItems(ctx)
	if err != nil {
		return err
	}
	categories, err := r.store.LoadCategories(ctx)
	if err != nil {
		return err
	}
	locations, err := r.store.LoadLocations(ctx)
	if err != nil {
		return err
	}

	var seed store.Batch
	if len(categories) == 0 {
		categories = model.DefaultCategories()
		for i := range categories {
			categories[i].ID = r.newID()
		}
		seed = seed.WithCategories(categories)
	}
	if len(locations) == 0 {
		locations = model.DefaultLocations()
		for i := range locations {
			locations[i].ID = r.newID()
		}
		seed = seed.WithLocations(locations)
	}
	if !seed.Empty() {
		if err := r.store.Commit(ctx, seed); err != nil {
			return fmt.Errorf("seeding defaults: %w", err)
		}
		slog.Info("seeded default catalog labels", "categories", len(categories), "locations", len(locations))
		rev++
	}

	r.items = items
	r.categories = categories
	r.locations = locations
	r.revision = rev
	r.loaded = true
	return nil
}

// commit persists the batch. On failure the in-memory change is kept and the
// error is logged and returned.
func (r *Repository) commit(ctx context.Context, op string, b store.Batch) error {
	if err := r.store.Commit(ctx, b); err != nil {
		slog.Error("failed to persist catalog change", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	// A single step means nobody else committed in between, so the
	// in-memory state is exactly what the store holds.
	if rev, err := r.store.Revision(ctx); err == nil && rev == r.revision+1 {
		r.revision = rev
	}
	return nil
}

// all returns a batch with every collection, after refreshing counts.
func (r *Repository) all() store.Batch {
	r.refreshCategoryCounts()
	r.refreshLocationCounts()
	return store.Batch{}.
		WithItems(r.items).
		WithCategories(r.categories).
		WithLocations(r.locations)
}

// Reset wipes every item, category, location, search query and photo, then
// seeds the built-in labels again. Settings and app state are kept.
func (r *Repository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing catalog: %w", err)
	}
	if err := r.photos.Clear(); err != nil {
		slog.Warn("failed to clear photos", "error", err)
	}

	r.loaded = false
	if err := r.reload(ctx); err != nil {
		return fmt.Errorf("reloading catalog: %w", err)
	}
	slog.Info("catalog reset")
	return nil
}
