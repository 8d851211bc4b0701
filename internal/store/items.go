package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/popis/internal/model"
)

type itemRow struct {
	ID            string          `db:"id"`
	Position      int             `db:"position"`
	Name          string          `db:"name"`
	Description   string          `db:"description"`
	CategoryID    string          `db:"category_id"`
	Location      string          `db:"location"`
	IsImportant   bool            `db:"is_important"`
	PhotoIDs      string          `db:"photo_ids"`
	PurchaseDate  sql.NullTime    `db:"purchase_date"`
	PurchasePrice sql.NullFloat64 `db:"purchase_price"`
	SerialNumber  string          `db:"serial_number"`
	WarrantyInfo  string          `db:"warranty_info"`
	Notes         string          `db:"notes"`
	ColorHex      string          `db:"color_hex"`
	DateAdded     time.Time       `db:"date_added"`
	LastModified  time.Time       `db:"last_modified"`
}

const itemColumns = `id, position, name, description, category_id, location, is_important,
	photo_ids, purchase_date, purchase_price, serial_number, warranty_info, notes,
	color_hex, date_added, last_modified`

const insertItem = `INSERT INTO items (` + itemColumns + `) VALUES (
	:id, :position, :name, :description, :category_id, :location, :is_important,
	:photo_ids, :purchase_date, :purchase_price, :serial_number, :warranty_info, :notes,
	:color_hex, :date_added, :last_modified)`

func newItemRow(pos int, item model.Item) (itemRow, error) {
	photos := item.PhotoIDs
	if photos == nil {
		photos = []string{}
	}
	photoJSON, err := json.Marshal(photos)
	if err != nil {
		return itemRow{}, fmt.Errorf("encoding photo ids: %w", err)
	}

	row := itemRow{
		ID:           item.ID,
		Position:     pos,
		Name:         item.Name,
		Description:  item.Description,
		CategoryID:   item.CategoryID,
		Location:     item.Location,
		IsImportant:  item.IsImportant,
		PhotoIDs:     string(photoJSON),
		SerialNumber: item.SerialNumber,
		WarrantyInfo: item.WarrantyInfo,
		Notes:        item.Notes,
		ColorHex:     item.ColorHex,
		DateAdded:    item.DateAdded.UTC(),
		LastModified: item.LastModified.UTC(),
	}
	if item.PurchaseDate != nil {
		row.PurchaseDate = sql.NullTime{Time: item.PurchaseDate.UTC(), Valid: true}
	}
	if item.PurchasePrice != nil {
		row.PurchasePrice = sql.NullFloat64{Float64: *item.PurchasePrice, Valid: true}
	}
	return row, nil
}

func (r itemRow) item() (model.Item, error) {
	item := model.Item{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		CategoryID:   r.CategoryID,
		Location:     r.Location,
		IsImportant:  r.IsImportant,
		SerialNumber: r.SerialNumber,
		WarrantyInfo: r.WarrantyInfo,
		Notes:        r.Notes,
		ColorHex:     r.ColorHex,
		DateAdded:    r.DateAdded.UTC(),
		LastModified: r.LastModified.UTC(),
	}
	if err := json.Unmarshal([]byte(r.PhotoIDs), &item.PhotoIDs); err != nil {
		return model.Item{}, fmt.Errorf("decoding photo ids of item %s: %w", r.ID, err)
	}
	if r.PurchaseDate.Valid {
		t := r.PurchaseDate.Time.UTC()
		item.PurchaseDate = &t
	}
	if r.PurchasePrice.Valid {
		p := r.PurchasePrice.Float64
		item.PurchasePrice = &p
	}
	return item, nil
}

// LoadItems returns all items in the order they were saved.
func (s *Store) LoadItems(ctx context.Context) ([]model.Item, error) {
	var rows []itemRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT `+itemColumns+` FROM items ORDER BY position`,
	); err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}

	items := make([]model.Item, 0, len(rows))
	for _, r := range rows {
		item, err := r.item()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// SaveItems replaces the whole item collection.
func (s *Store) SaveItems(ctx context.Context, items []model.Item) error {
	return s.Commit(ctx, Batch{}.WithItems(items))
}

func replaceItems(ctx context.Context, tx *sqlx.Tx, items []model.Item) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return fmt.Errorf("clearing items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	stmt, err := tx.PrepareNamedContext(ctx, insertItem)
	if err != nil {
		return fmt.Errorf("preparing item insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		row, err := newItemRow(i, item)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("saving item %s: %w", item.ID, err)
		}
	}
	return nil
}
