package model

import (
	"fmt"
	"time"
)

// ViewMode is how item lists are laid out.
type ViewMode string

// View modes.
const (
	ViewModeList ViewMode = "list"
	ViewModeGrid ViewMode = "grid"
)

// SortOption selects the display order of item lists.
type SortOption string

// Sort options.
const (
	SortNameAscending SortOption = "nameAscending"
	SortDateNewest    SortOption = "dateNewest"
	SortDateOldest    SortOption = "dateOldest"
	SortCategory      SortOption = "category"
	SortLocation      SortOption = "location"
)

// ParseSortOption validates a sort option name.
func ParseSortOption(s string) (SortOption, error) {
	switch o := SortOption(s); o {
	case SortNameAscending, SortDateNewest, SortDateOldest, SortCategory, SortLocation:
		return o, nil
	}
	return "", fmt.Errorf("unknown sort option %q", s)
}

// PhotoQuality controls how aggressively photos are downscaled and compressed.
type PhotoQuality string

// Photo qualities.
const (
	PhotoQualityLow    PhotoQuality = "low"
	PhotoQualityMedium PhotoQuality = "medium"
	PhotoQualityHigh   PhotoQuality = "high"
)

// ParsePhotoQuality validates a photo quality name.
func ParsePhotoQuality(s string) (PhotoQuality, error) {
	switch q := PhotoQuality(s); q {
	case PhotoQualityLow, PhotoQualityMedium, PhotoQualityHigh:
		return q, nil
	}
	return "", fmt.Errorf("unknown photo quality %q", s)
}

// MaxDimension is the longest allowed side in pixels for stored photos.
// Unknown qualities are treated as medium.
func (q PhotoQuality) MaxDimension() int {
	switch q {
	case PhotoQualityLow:
		return 800
	case PhotoQualityHigh:
		return 1600
	default:
		return 1200
	}
}

// JPEGQuality is the encoder quality (1-100) for stored photos.
func (q PhotoQuality) JPEGQuality() int {
	switch q {
	case PhotoQualityLow:
		return 30
	case PhotoQualityHigh:
		return 80
	default:
		return 60
	}
}

// AppSettings holds user preferences.
type AppSettings struct {
	DefaultViewMode      ViewMode     `json:"default_view_mode"`
	ItemsPerPage         int          `json:"items_per_page"`
	ShowPhotosInList     bool         `json:"show_photos_in_list"`
	DefaultSortOption    SortOption   `json:"default_sort_option"`
	PhotoQuality         PhotoQuality `json:"photo_quality"`
	MaxPhotosPerItem     int          `json:"max_photos_per_item"`
	AutoCompressPhotos   bool         `json:"auto_compress_photos"`
	SearchHistoryEnabled bool         `json:"search_history_enabled"`
	AutoSearchEnabled    bool         `json:"auto_search_enabled"`
	CaseSensitiveSearch  bool         `json:"case_sensitive_search"`
	HapticsEnabled       bool         `json:"haptics_enabled"`
	NotificationsEnabled bool         `json:"notifications_enabled"`
	NotificationTime     string       `json:"notification_time"`
}

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() AppSettings {
	return AppSettings{
		DefaultViewMode:      ViewModeGrid,
		ItemsPerPage:         20,
		ShowPhotosInList:     true,
		DefaultSortOption:    SortDateNewest,
		PhotoQuality:         PhotoQualityMedium,
		MaxPhotosPerItem:     5,
		AutoCompressPhotos:   true,
		SearchHistoryEnabled: true,
		AutoSearchEnabled:    true,
		CaseSensitiveSearch:  false,
		HapticsEnabled:       true,
		NotificationsEnabled: false,
		NotificationTime:     "09:00",
	}
}

// Normalize replaces invalid or missing values with defaults.
func (s *AppSettings) Normalize() {
	d := DefaultSettings()
	if s.DefaultViewMode != ViewModeList && s.DefaultViewMode != ViewModeGrid {
		s.DefaultViewMode = d.DefaultViewMode
	}
	if s.ItemsPerPage <= 0 {
		s.ItemsPerPage = d.ItemsPerPage
	}
	if _, err := ParseSortOption(string(s.DefaultSortOption)); err != nil {
		s.DefaultSortOption = d.DefaultSortOption
	}
	if _, err := ParsePhotoQuality(string(s.PhotoQuality)); err != nil {
		s.PhotoQuality = d.PhotoQuality
	}
	if s.MaxPhotosPerItem <= 0 {
		s.MaxPhotosPerItem = d.MaxPhotosPerItem
	}
	if _, err := time.Parse("15:04", s.NotificationTime); err != nil {
		s.NotificationTime = d.NotificationTime
	}
}

// AppState holds bookkeeping about the catalog itself.
type AppState struct {
	HasSeenOnboarding bool       `json:"has_seen_onboarding"`
	TotalItemsCreated int        `json:"total_items_created"`
	FirstItemDate     *time.Time `json:"first_item_date,omitempty"`
	LastBackupDate    *time.Time `json:"last_backup_date,omitempty"`
	AppVersion        string     `json:"app_version"`
}

// AppVersion is recorded in a fresh AppState.
const AppVersion = "1.0.0"
