package model

import "time"

// Category is a classification bucket for items, referenced by ID.
type Category struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	IconName  string     `json:"icon_name"`
	ColorHex  string     `json:"color_hex"`
	ItemCount int        `json:"item_count"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
	IsDefault bool       `json:"is_default"`
}

// Clone returns a copy that shares no pointers with c.
func (c Category) Clone() Category {
	if c.LastUsed != nil {
		t := *c.LastUsed
		c.LastUsed = &t
	}
	return c
}

// OtherCategoryName is the built-in catch-all category.
const OtherCategoryName = "Other"

// DefaultCategories returns the built-in categories seeded into an empty
// catalog. IDs are left empty and assigned by the caller.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Electronics", IconName: "laptopcomputer", ColorHex: "#6A1B9A", IsDefault: true},
		{Name: "Furniture", IconName: "bed.double.fill", ColorHex: "#43A047", IsDefault: true},
		{Name: "Clothing", IconName: "tshirt.fill", ColorHex: "#FF5722", IsDefault: true},
		{Name: "Books", IconName: "book.fill", ColorHex: "#9C27B0", IsDefault: true},
		{Name: "Kitchen", IconName: "fork.knife", ColorHex: "#607D8B", IsDefault: true},
		{Name: "Tools", IconName: "hammer.fill", ColorHex: "#E91E63", IsDefault: true},
		{Name: OtherCategoryName, IconName: "square.grid.2x2.fill", ColorHex: "#607D8B", IsDefault: true},
	}
}
