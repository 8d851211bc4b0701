package store

import (
	"context"
	"fmt"
)

// LoadSearchHistory returns saved queries, most recent first.
func (s *Store) LoadSearchHistory(ctx context.Context) ([]string, error) {
	entries := []string{}
	if err := s.db.SelectContext(ctx, &entries,
		`SELECT query FROM search_history ORDER BY position`,
	); err != nil {
		return nil, fmt.Errorf("loading search history: %w", err)
	}
	return entries, nil
}

// SaveSearchHistory replaces the saved queries.
func (s *Store) SaveSearchHistory(ctx context.Context, entries []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM search_history`); err != nil {
		return fmt.Errorf("clearing search history: %w", err)
	}
	for i, q := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO search_history (position, query) VALUES (?, ?)`, i, q,
		); err != nil {
			return fmt.Errorf("saving search history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing search history: %w", err)
	}
	return nil
}

// ClearSearchHistory removes all saved queries.
func (s *Store) ClearSearchHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM search_history`); err != nil {
		return fmt.Errorf("clearing search history: %w", err)
	}
	return nil
}
