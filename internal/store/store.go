// Package store persists the catalog in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/popis/internal/model"
)

// Store is the record store backed by a migrated SQLite database.
type Store struct {
	db *sqlx.DB
}

// New wraps an open database. The schema must already be migrated.
func New(db *sql.DB) *Store {
	return &Store{db: sqlx.NewDb(db, "sqlite")}
}

// Batch names the collections replaced by a single Commit.
// Collections not added to the batch are left untouched.
type Batch struct {
	items      []model.Item
	categories []model.Category
	locations  []model.Location

	hasItems, hasCategories, hasLocations bool
}

// WithItems adds the item collection to the batch.
func (b Batch) WithItems(items []model.Item) Batch {
	b.items, b.hasItems = items, true
	return b
}

// WithCategories adds the category collection to the batch.
func (b Batch) WithCategories(categories []model.Category) Batch {
	b.categories, b.hasCategories = categories, true
	return b
}

// WithLocations adds the location collection to the batch.
func (b Batch) WithLocations(locations []model.Location) Batch {
	b.locations, b.hasLocations = locations, true
	return b
}

// Items returns the item collection and whether it is part of the batch.
func (b Batch) Items() ([]model.Item, bool) { return b.items, b.hasItems }

// Categories returns the category collection and whether it is part of the batch.
func (b Batch) Categories() ([]model.Category, bool) { return b.categories, b.hasCategories }

// Locations returns the location collection and whether it is part of the batch.
func (b Batch) Locations() ([]model.Location, bool) { return b.locations, b.hasLocations }

// Empty reports whether the batch names no collection.
func (b Batch) Empty() bool { return !b.hasItems && !b.hasCategories && !b.hasLocations }

// Commit replaces every collection in the batch inside one transaction and
// bumps the store revision. Either all collections are written or none are.
func (s *Store) Commit(ctx context.Context, b Batch) error {
	if b.Empty() {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if b.hasItems {
		if err := replaceItems(ctx, tx, b.items); err != nil {
			return err
		}
	}
	if b.hasCategories {
		if err := replaceLabels(ctx, tx, "categories", categoryRows(b.categories)); err != nil {
			return err
		}
	}
	if b.hasLocations {
		if err := replaceLabels(ctx, tx, "locations", locationRows(b.locations)); err != nil {
			return err
		}
	}

	if err := bumpRevision(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// Revision returns a counter that increases with every committed change to
// items, categories or locations. A fresh database is at revision 0.
func (s *Store) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := s.db.GetContext(ctx, &rev,
		`SELECT CAST(value AS INTEGER) FROM settings WHERE key = 'revision'`,
	)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading revision: %w", err)
	}
	return rev, nil
}

func bumpRevision(ctx context.Context, tx *sqlx.Tx) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES ('revision', '1')
		 ON CONFLICT(key) DO UPDATE SET value = CAST(value AS INTEGER) + 1`,
	)
	if err != nil {
		return fmt.Errorf("bumping revision: %w", err)
	}
	return nil
}

// Clear removes all items, categories, locations and search history.
// Settings, app state and credentials are kept.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"items", "categories", "locations", "search_history"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if err := bumpRevision(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing clear: %w", err)
	}
	return nil
}
