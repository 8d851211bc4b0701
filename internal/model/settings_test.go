package model

import "testing"

func TestParseSortOption(t *testing.T) {
	tests := []struct {
		in      string
		want    SortOption
		wantErr bool
	}{
		{"nameAscending", SortNameAscending, false},
		{"dateNewest", SortDateNewest, false},
		{"dateOldest", SortDateOldest, false},
		{"category", SortCategory, false},
		{"location", SortLocation, false},
		{"", "", true},
		{"name", "", true},
		{"DATENEWEST", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSortOption(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSortOption(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseSortOption(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPhotoQualityPresets(t *testing.T) {
	tests := []struct {
		quality PhotoQuality
		maxDim  int
		jpeg    int
	}{
		{PhotoQualityLow, 800, 30},
		{PhotoQualityMedium, 1200, 60},
		{PhotoQualityHigh, 1600, 80},
		// Unknown qualities behave like medium.
		{"", 1200, 60},
		{"ultra", 1200, 60},
	}

	for _, tt := range tests {
		if got := tt.quality.MaxDimension(); got != tt.maxDim {
			t.Errorf("%q.MaxDimension() = %d, want %d", tt.quality, got, tt.maxDim)
		}
		if got := tt.quality.JPEGQuality(); got != tt.jpeg {
			t.Errorf("%q.JPEGQuality() = %d, want %d", tt.quality, got, tt.jpeg)
		}
	}
}

func TestSettingsNormalize(t *testing.T) {
	s := AppSettings{
		DefaultViewMode:     "carousel",
		DefaultSortOption:   "random",
		PhotoQuality:        "raw",
		NotificationTime:    "9am",
		CaseSensitiveSearch: true,
	}
	s.Normalize()

	d := DefaultSettings()
	if s.DefaultViewMode != d.DefaultViewMode {
		t.Errorf("expected view mode %q, got %q", d.DefaultViewMode, s.DefaultViewMode)
	}
	if s.DefaultSortOption != d.DefaultSortOption {
		t.Errorf("expected sort %q, got %q", d.DefaultSortOption, s.DefaultSortOption)
	}
	if s.PhotoQuality != d.PhotoQuality {
		t.Errorf("expected quality %q, got %q", d.PhotoQuality, s.PhotoQuality)
	}
	if s.ItemsPerPage != 20 || s.MaxPhotosPerItem != 5 {
		t.Errorf("expected 20 per page and 5 photos, got %d and %d", s.ItemsPerPage, s.MaxPhotosPerItem)
	}
	if s.NotificationTime != "09:00" {
		t.Errorf("expected notification time 09:00, got %q", s.NotificationTime)
	}
	if !s.CaseSensitiveSearch {
		t.Error("valid values must survive normalization")
	}
}

func TestItemCloneIndependence(t *testing.T) {
	price := 10.0
	item := Item{ID: "a", PhotoIDs: []string{"p1"}, PurchasePrice: &price}
	c := item.Clone()

	c.PhotoIDs[0] = "changed"
	*c.PurchasePrice = 99

	if item.PhotoIDs[0] != "p1" {
		t.Error("clone shares photo slice with original")
	}
	if *item.PurchasePrice != 10 {
		t.Error("clone shares price pointer with original")
	}
}
