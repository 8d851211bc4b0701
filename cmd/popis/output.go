package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/erazemk/popis/internal/model"
	"github.com/erazemk/popis/internal/stats"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	colorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	colorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	colorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	colorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	colorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite).
			Background(colorBlue).
			Padding(0, 1)

	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorBlue).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	dimStyle       = lipgloss.NewStyle().Foreground(colorGray)
	labelStyle     = lipgloss.NewStyle().Foreground(colorGray).Width(22)
	valueStyle     = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	importantStyle = lipgloss.NewStyle().Foreground(colorYellow)
)

const addedLayout = "2006-01-02"

// renderItems draws items as a table. Unknown category ids show as "Unknown".
func renderItems(items []model.Item, categories []model.Category) string {
	if len(items) == 0 {
		return dimStyle.Render("No items.")
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("", "Name", "Category", "Location", "Photos", "Price", "Added").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle.Foreground(colorYellow)
			default:
				return cellStyle
			}
		})

	for _, it := range items {
		star := ""
		if it.IsImportant {
			star = "★"
		}
		category, ok := names[it.CategoryID]
		if !ok {
			category = "Unknown"
		}
		price := ""
		if it.PurchasePrice != nil {
			price = strconv.FormatFloat(*it.PurchasePrice, 'f', 2, 64)
		}
		t.Row(
			star,
			it.Name,
			category,
			it.Location,
			strconv.Itoa(len(it.PhotoIDs)),
			price,
			it.DateAdded.Local().Format(addedLayout),
		)
	}

	return t.String() + "\n" + dimStyle.Render(fmt.Sprintf("%d item(s)", len(items)))
}

func field(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}

// renderSummary formats the dashboard statistics.
func renderSummary(s stats.Summary, state model.AppState) string {
	lines := []string{
		titleStyle.Render("Catalog"),
		"",
		field("Items", strconv.Itoa(s.TotalItems)),
		field("Categories", strconv.Itoa(s.TotalCategories)),
		field("Items with photos", strconv.Itoa(s.ItemsWithPhotos)),
		field("Locations in use", strconv.Itoa(s.UniqueLocations)),
	}
	if s.MostCommonCategory != nil {
		lines = append(lines, field("Most common category", s.MostCommonCategory.Name))
	}
	if s.MostRecentItem != nil {
		lines = append(lines, field("Most recent item", s.MostRecentItem.Name))
	}

	lines = append(lines, "", field("Items ever created", strconv.Itoa(state.TotalItemsCreated)))
	if state.LastBackupDate != nil {
		lines = append(lines, field("Last backup", state.LastBackupDate.Local().Format("2006-01-02 15:04")))
	} else {
		lines = append(lines, field("Last backup", "never"))
	}
	return strings.Join(lines, "\n")
}

// renderCategoryStats formats the statistics of one category.
func renderCategoryStats(c model.Category, s stats.CategoryStatistics) string {
	lines := []string{
		titleStyle.Render(c.Name),
		"",
		field("Items", strconv.Itoa(s.TotalItems)),
		field("Items with photos", strconv.Itoa(s.ItemsWithPhotos)),
		field("Locations in use", strconv.Itoa(s.UniqueLocations)),
	}
	if s.MostRecentItem != nil {
		lines = append(lines, field("Most recent item", s.MostRecentItem.Name))
	}
	return strings.Join(lines, "\n")
}

func success(msg string) string {
	return importantStyle.Render("✓") + " " + msg
}
