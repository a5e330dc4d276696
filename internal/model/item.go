package model

import (
	"strings"
	"time"
)

// Item is a single pantry entry.
type Item struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"user_id"`
	Name         string    `json:"name"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	PurchaseDate Date      `json:"purchase_date"`
	ExpiryDate   Date      `json:"expiry_date"`
	ImageMime    string    `json:"image_mime,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UnitPieces is the unit whose quantities must be whole numbers.
const UnitPieces = "pcs"

// IsPieces reports whether unit counts whole pieces. The comparison is
// case-insensitive.
func IsPieces(unit string) bool {
	return strings.EqualFold(strings.TrimSpace(unit), UnitPieces)
}

// DaysUntilExpiry returns the number of calendar days from today to the
// item's expiry date. Negative values mean the item has expired.
func (i Item) DaysUntilExpiry(today Date) int {
	return today.DaysUntil(i.ExpiryDate)
}
