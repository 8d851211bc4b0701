package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/popis/internal/model"
)

// labelRow is the shared row shape of the categories and locations tables.
type labelRow struct {
	ID        string       `db:"id"`
	Position  int          `db:"position"`
	Name      string       `db:"name"`
	IconName  string       `db:"icon_name"`
	ColorHex  string       `db:"color_hex"`
	ItemCount int          `db:"item_count"`
	LastUsed  sql.NullTime `db:"last_used"`
	IsDefault bool         `db:"is_default"`
}

const labelColumns = `id, position, name, icon_name, color_hex, item_count, last_used, is_default`

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func categoryRows(categories []model.Category) []labelRow {
	rows := make([]labelRow, len(categories))
	for i, c := range categories {
		rows[i] = labelRow{
			ID: c.ID, Position: i, Name: c.Name, IconName: c.IconName, ColorHex: c.ColorHex,
			ItemCount: c.ItemCount, LastUsed: nullTime(c.LastUsed), IsDefault: c.IsDefault,
		}
	}
	return rows
}

func locationRows(locations []model.Location) []labelRow {
	rows := make([]labelRow, len(locations))
	for i, l := range locations {
		rows[i] = labelRow{
			ID: l.ID, Position: i, Name: l.Name, IconName: l.IconName, ColorHex: l.ColorHex,
			ItemCount: l.ItemCount, LastUsed: nullTime(l.LastUsed), IsDefault: l.IsDefault,
		}
	}
	return rows
}

func (r labelRow) category() model.Category {
	c := model.Category{
		ID: r.ID, Name: r.Name, IconName: r.IconName, ColorHex: r.ColorHex,
		ItemCount: r.ItemCount, IsDefault: r.IsDefault,
	}
	if r.LastUsed.Valid {
		t := r.LastUsed.Time.UTC()
		c.LastUsed = &t
	}
	return c
}

func (s *Store) loadLabels(ctx context.Context, table string) ([]labelRow, error) {
	var rows []labelRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT `+labelColumns+` FROM `+table+` ORDER BY position`,
	); err != nil {
		return nil, fmt.Errorf("loading %s: %w", table, err)
	}
	return rows, nil
}

func replaceLabels(ctx context.Context, tx *sqlx.Tx, table string, rows []labelRow) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("clearing %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil
	}

	stmt, err := tx.PrepareNamedContext(ctx, `INSERT INTO `+table+` (`+labelColumns+`)
		VALUES (:id, :position, :name, :icon_name, :color_hex, :item_count, :last_used, :is_default)`)
	if err != nil {
		return fmt.Errorf("preparing %s insert: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("saving %s row %s: %w", table, row.ID, err)
		}
	}
	return nil
}

// LoadCategories returns all categories in the order they were saved.
func (s *Store) LoadCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.loadLabels(ctx, "categories")
	if err != nil {
		return nil, err
	}
	categories := make([]model.Category, len(rows))
	for i, r := range rows {
		categories[i] = r.category()
	}
	return categories, nil
}

// SaveCategories replaces the whole category collection.
func (s *Store) SaveCategories(ctx context.Context, categories []model.Category) error {
	return s.Commit(ctx, Batch{}.WithCategories(categories))
}

// LoadLocations returns all locations in the order they were saved.
func (s *Store) LoadLocations(ctx context.Context) ([]model.Location, error) {
	rows, err := s.loadLabels(ctx, "locations")
	if err != nil {
		return nil, err
	}
	locations := make([]model.Location, len(rows))
	for i, r := range rows {
		// Locations share the category row shape.
		locations[i] = model.Location(r.category())
	}
	return locations, nil
}

// SaveLocations replaces the whole location collection.
func (s *Store) SaveLocations(ctx context.Context, locations []model.Location) error {
	return s.Commit(ctx, Batch{}.WithLocations(locations))
}
