// Package photo stores item photos as JPEG files in a directory.
package photo

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/erazemk/popis/internal/imaging"
	"github.com/erazemk/popis/internal/model"
)

const ext = ".jpg"

// ErrNotFound is returned by Load for unknown photo ids.
var ErrNotFound = errors.New("photo not found")

// Store keeps one <id>.jpg file per photo.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating photo directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory holding the photos.
func (s *Store) Dir() string { return s.dir }

// path returns the file path for id. Ids are UUIDs, which keeps them from
// escaping the directory.
func (s *Store) path(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("invalid photo id %q", id)
	}
	return filepath.Join(s.dir, id+ext), nil
}

// Save processes the image at the given quality and stores it under a new id.
func (s *Store) Save(r io.Reader, quality model.PhotoQuality) (string, error) {
	data, err := imaging.Process(r, quality)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	path, _ := s.path(id)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating photo file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing photo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing photo file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("storing photo: %w", err)
	}
	return id, nil
}

// Load returns the JPEG bytes of a photo.
func (s *Store) Load(id string) ([]byte, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	return data, nil
}

// Delete removes a photo. Missing photos are not an error.
func (s *Store) Delete(id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting photo: %w", err)
	}
	return nil
}

// DeleteAll removes every photo in ids, returning the joined errors.
func (s *Store) DeleteAll(ids []string) error {
	var errs []error
	for _, id := range ids {
		if err := s.Delete(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// List returns the ids of all stored photos.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing photos: %w", err)
	}

	var ids []string
	for _, e := range entries {
		id, ok := strings.CutSuffix(e.Name(), ext)
		if !ok || e.IsDir() {
			continue
		}
		if _, err := uuid.Parse(id); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Clear removes every stored photo.
func (s *Store) Clear() error {
	ids, err := s.List()
	if err != nil {
		return err
	}
	return s.DeleteAll(ids)
}
