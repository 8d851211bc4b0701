package model

import "time"

// Item is a cataloged physical possession.
type Item struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	CategoryID    string     `json:"category_id"`
	Location      string     `json:"location"`
	IsImportant   bool       `json:"is_important"`
	PhotoIDs      []string   `json:"photo_ids"`
	PurchaseDate  *time.Time `json:"purchase_date,omitempty"`
	PurchasePrice *float64   `json:"purchase_price,omitempty"`
	SerialNumber  string     `json:"serial_number"`
	WarrantyInfo  string     `json:"warranty_info"`
	Notes         string     `json:"notes"`
	ColorHex      string     `json:"color_hex"`
	DateAdded     time.Time  `json:"date_added"`
	LastModified  time.Time  `json:"last_modified"`
}

// HasPhotos reports whether at least one photo is attached.
func (i Item) HasPhotos() bool {
	return len(i.PhotoIDs) > 0
}

// Clone returns a copy that shares no slices or pointers with i.
func (i Item) Clone() Item {
	c := i
	if i.PhotoIDs != nil {
		c.PhotoIDs = append([]string(nil), i.PhotoIDs...)
	}
	if i.PurchaseDate != nil {
		d := *i.PurchaseDate
		c.PurchaseDate = &d
	}
	if i.PurchasePrice != nil {
		p := *i.PurchasePrice
		c.PurchasePrice = &p
	}
	return c
}
