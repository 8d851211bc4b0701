package model

import "time"

// Location is a place label for items. Items reference it by Name, not ID.
type Location struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	IconName  string     `json:"icon_name"`
	ColorHex  string     `json:"color_hex"`
	ItemCount int        `json:"item_count"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
	IsDefault bool       `json:"is_default"`
}

// Clone returns a copy that shares no pointers with l.
func (l Location) Clone() Location {
	if l.LastUsed != nil {
		t := *l.LastUsed
		l.LastUsed = &t
	}
	return l
}

// OtherLocationName is the name looked up as the catch-all location.
const OtherLocationName = "Other"

// DefaultLocations returns the built-in locations seeded into an empty catalog.
func DefaultLocations() []Location {
	return []Location{
		{Name: "Living Room", IconName: "sofa.fill", ColorHex: "#43A047", IsDefault: true},
		{Name: "Bedroom", IconName: "bed.double.fill", ColorHex: "#6A1B9A", IsDefault: true},
		{Name: "Kitchen", IconName: "fork.knife", ColorHex: "#FF5722", IsDefault: true},
		{Name: "Bathroom", IconName: "shower.fill", ColorHex: "#2196F3", IsDefault: true},
		{Name: "Garage", IconName: "car.fill", ColorHex: "#607D8B", IsDefault: true},
		{Name: "Storage", IconName: "archivebox.fill", ColorHex: "#9C27B0", IsDefault: true},
	}
}
