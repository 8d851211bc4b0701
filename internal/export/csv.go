// Package export renders the catalog as CSV.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/erazemk/popis/internal/model"
)

// Header is the first line of every export.
const Header = "Name,Description,Category,Location,Important,Purchase Date,Purchase Price,Serial Number,Warranty,Notes,Date Added"

// DateLayout formats dates in exports.
const DateLayout = "Jan 2, 2006"

// UnknownCategory replaces category ids that do not resolve.
const UnknownCategory = "Unknown"

// WriteCSV writes the header and one row per item to w. Every field is
// quoted and embedded quotes are doubled. Dates use the local time zone.
func WriteCSV(w io.Writer, items []model.Item, categories []model.Category) error {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		if _, ok := names[c.ID]; !ok {
			names[c.ID] = c.Name
		}
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(Header + "\n")

	for _, it := range items {
		category, ok := names[it.CategoryID]
		if !ok {
			category = UnknownCategory
		}

		fields := []string{
			it.Name,
			it.Description,
			category,
			it.Location,
			yesNo(it.IsImportant),
			formatDate(it.PurchaseDate),
			formatPrice(it.PurchasePrice),
			it.SerialNumber,
			it.WarrantyInfo,
			it.Notes,
			formatDate(&it.DateAdded),
		}
		for i, f := range fields {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(quote(f))
		}
		bw.WriteByte('\n')
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// CSV returns the export as a string.
func CSV(items []model.Item, categories []model.Category) string {
	var sb strings.Builder
	// Writes to a strings.Builder cannot fail.
	_ = WriteCSV(&sb, items, categories)
	return sb.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(DateLayout)
}

func formatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *p)
}
