package photo

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/erazemk/popis/internal/model"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	img.Set(1, 1, color.RGBA{0, 255, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "photos"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestSaveLoadDelete(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Save(bytes.NewReader(testPNG(t)), model.PhotoQualityMedium)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), id+".jpg")); err != nil {
		t.Fatalf("expected %s.jpg on disk: %v", id, err)
	}

	data, err := s.Load(id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err != nil || format != "jpeg" {
		t.Errorf("expected stored jpeg, got format %q (err %v)", format, err)
	}

	if err := s.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting twice is fine.
	if err := s.Delete(id); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestSaveRejectsNonImages(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save(bytes.NewReader([]byte("hello")), model.PhotoQualityLow); err == nil {
		t.Error("expected error for non-image data")
	}
	ids, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no stored photos, got %v", ids)
	}
}

func TestLoadRejectsPathTraversal(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Load("../secret"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete("../secret"); err == nil {
		t.Error("expected error for invalid id")
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	for range 3 {
		if _, err := s.Save(bytes.NewReader(testPNG(t)), model.PhotoQualityLow); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	// Unrelated files are left alone.
	other := filepath.Join(s.Dir(), "notes.txt")
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ids, _ := s.List()
	if len(ids) != 3 {
		t.Fatalf("expected 3 photos, got %d", len(ids))
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	ids, _ = s.List()
	if len(ids) != 0 {
		t.Errorf("expected no photos after clear, got %v", ids)
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("expected unrelated file to survive: %v", err)
	}
}
