package pantry

import (
	"fmt"

	"github.com/erazemk/pantrypal/internal/freshness"
	"github.com/erazemk/pantrypal/internal/model"
)

// Row is one line of the pantry list.
type Row struct {
	model.Item
	QuantityText string           `json:"quantity_text"`
	Freshness    freshness.Status `json:"freshness"`
	HasImage     bool             `json:"has_image"`
}

// View is a snapshot of an owner's pantry, sorted by days until expiry.
type View struct {
	Today model.Date `json:"today"`
	Rows  []Row      `json:"items"`
}

// NewView sorts items and classifies each against today. items is sorted in
// place.
func NewView(items []model.Item, today model.Date) *View {
	freshness.SortByExpiry(items, today)

	v := &View{Today: today, Rows: make([]Row, 0, len(items))}
	for _, item := range items {
		v.Rows = append(v.Rows, Row{
			Item:         item,
			QuantityText: QuantityText(item.Quantity, item.Unit),
			Freshness:    freshness.ClassifyItem(item, today),
			HasImage:     item.ImageMime != "",
		})
	}
	return v
}

// QuantityText formats a quantity for display: whole pieces without
// decimals, everything else with one.
func QuantityText(quantity float64, unit string) string {
	if model.IsPieces(unit) {
		return fmt.Sprintf("%d %s", int64(quantity), unit)
	}
	return fmt.Sprintf("%.1f %s", quantity, unit)
}
