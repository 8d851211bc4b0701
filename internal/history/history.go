// Package history keeps the most recently used search queries.
package history

import (
	"context"
	"fmt"

	"github.com/erazemk/popis/internal/model"
)

// MaxEntries bounds the history length.
const MaxEntries = 20

// Add returns entries with q moved or inserted at the front and truncated to
// MaxEntries. Equality is exact; entries is not modified.
func Add(entries []string, q string) []string {
	out := make([]string, 0, min(len(entries)+1, MaxEntries))
	out = append(out, q)
	for _, e := range entries {
		if len(out) == MaxEntries {
			break
		}
		if e != q {
			out = append(out, e)
		}
	}
	return out
}

// Store persists the history and exposes the settings that gate it.
type Store interface {
	LoadSearchHistory(ctx context.Context) ([]string, error)
	SaveSearchHistory(ctx context.Context, entries []string) error
	ClearSearchHistory(ctx context.Context) error
	LoadSettings(ctx context.Context) (model.AppSettings, error)
}

// Recorder records queries in the store.
type Recorder struct {
	store Store
}

// NewRecorder returns a Recorder backed by s.
func NewRecorder(s Store) *Recorder {
	return &Recorder{store: s}
}

// Add records q. Empty queries are ignored, as is everything while search
// history is disabled in the settings.
func (r *Recorder) Add(ctx context.Context, q string) error {
	if q == "" {
		return nil
	}

	settings, err := r.store.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if !settings.SearchHistoryEnabled {
		return nil
	}

	entries, err := r.store.LoadSearchHistory(ctx)
	if err != nil {
		return err
	}
	if len(entries) > 0 && entries[0] == q {
		return nil
	}
	return r.store.SaveSearchHistory(ctx, Add(entries, q))
}

// Entries returns the history, most recent first.
func (r *Recorder) Entries(ctx context.Context) ([]string, error) {
	return r.store.LoadSearchHistory(ctx)
}

// Clear empties the history.
func (r *Recorder) Clear(ctx context.Context) error {
	return r.store.ClearSearchHistory(ctx)
}
