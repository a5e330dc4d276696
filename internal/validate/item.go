package validate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/erazemk/pantrypal/internal/model"
)

// maxDaysFromNow keeps "days from now" well inside the storable date range.
const maxDaysFromNow = model.MaxYear * 366

// DisplayDate is the layout the add-item form shows dates in.
const DisplayDate = "Jan 2, 2006"

// ItemForm is the add-item form. Numeric inputs arrive as the raw text the
// user typed.
type ItemForm struct {
	Name         string `json:"name" validate:"required"`
	Quantity     string `json:"quantity" validate:"required"`
	Unit         string `json:"unit" validate:"required"`
	PurchaseDate string `json:"purchase_date"`
	ExpiryMode   string `json:"expiry_mode" validate:"omitempty,oneof=date days"`
	ExpiryDate   string `json:"expiry_date"`
	DaysFromNow  string `json:"days_from_now"`
}

var itemMessages = messages{
	"name.required":     "Item name required",
	"quantity.required": "Quantity required",
	"unit.required":     "Unit required",
	"expiry_mode.oneof": "Choose an expiry date or a number of days",
}

// NewItem is a checked add-item form.
type NewItem struct {
	Name         string
	Quantity     float64
	Unit         string
	PurchaseDate model.Date
	ExpiryDate   model.Date
	ExpiryMode   string
	// Warnings lists accepted but suspicious input, such as an expiry date
	// before the purchase date.
	Warnings []string
}

// Item returns the pantry item described by n for ownerID.
func (n *NewItem) Item(ownerID string) model.Item {
	return model.Item{
		OwnerID:      ownerID,
		Name:         n.Name,
		Quantity:     n.Quantity,
		Unit:         n.Unit,
		PurchaseDate: n.PurchaseDate,
		ExpiryDate:   n.ExpiryDate,
	}
}

// AddItem checks the add-item form. today anchors an empty purchase date and
// the "days from now" expiry mode. An empty expiry mode means days.
func AddItem(f *ItemForm, today model.Date) (*NewItem, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Quantity = strings.TrimSpace(f.Quantity)
	f.Unit = strings.TrimSpace(f.Unit)
	f.PurchaseDate = strings.TrimSpace(f.PurchaseDate)
	f.ExpiryMode = strings.TrimSpace(f.ExpiryMode)
	f.ExpiryDate = strings.TrimSpace(f.ExpiryDate)
	f.DaysFromNow = strings.TrimSpace(f.DaysFromNow)

	if errs := check(f, itemMessages); len(errs) > 0 {
		return nil, errs
	}

	n := &NewItem{Name: f.Name, Unit: f.Unit, ExpiryMode: f.ExpiryMode}
	if n.ExpiryMode == "" {
		n.ExpiryMode = model.ExpiryModeDays
	}

	qty, err := ParseQuantity(f.Quantity, f.Unit)
	if err != nil {
		return nil, Errors{{Field: "quantity", Message: err.Error()}}
	}
	n.Quantity = qty

	n.PurchaseDate = today
	if f.PurchaseDate != "" {
		d, err := ParseDisplayDate(f.PurchaseDate)
		if err != nil {
			return nil, Errors{{Field: "purchase_date", Message: "Invalid Purchase Date"}}
		}
		n.PurchaseDate = d
	}

	switch n.ExpiryMode {
	case model.ExpiryModeDate:
		d, err := ParseDisplayDate(f.ExpiryDate)
		if err != nil {
			return nil, Errors{{Field: "expiry_date", Message: "Invalid expiry date"}}
		}
		n.ExpiryDate = d
	default:
		if f.DaysFromNow == "" {
			return nil, Errors{{Field: "days_from_now", Message: "Enter days"}}
		}
		days, err := strconv.Atoi(f.DaysFromNow)
		if err != nil || days < 0 || days > maxDaysFromNow {
			return nil, Errors{{Field: "days_from_now", Message: "Invalid input"}}
		}
		n.ExpiryDate = today.AddDays(days)
		if !n.ExpiryDate.InRange() {
			return nil, Errors{{Field: "days_from_now", Message: "Invalid input"}}
		}
	}

	if n.ExpiryDate.Before(n.PurchaseDate) {
		n.Warnings = append(n.Warnings, "Expiry date is before purchase date")
	}

	return n, nil
}

// Quantity errors. Their text is shown to the user as is.
var (
	ErrInvalidNumber    = errors.New("Invalid number")
	ErrNotPositive      = errors.New("Must be > 0")
	ErrFractionalPieces = errors.New("Pieces must be whole numbers")
)

// ParseQuantity parses a quantity typed by the user and checks it against
// unit.
func ParseQuantity(s, unit string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidNumber
	}
	if err := Quantity(v, unit); err != nil {
		return 0, err
	}
	return v, nil
}

// Quantity checks that v is positive, and a whole number when unit counts
// pieces.
func Quantity(v float64, unit string) error {
	if v <= 0 || math.IsNaN(v) {
		return ErrNotPositive
	}
	if model.IsPieces(unit) && v != math.Trunc(v) {
		return ErrFractionalPieces
	}
	return nil
}

// ParseDisplayDate parses a date in the form's display layout. ISO dates and
// other unambiguous layouts are accepted too.
func ParseDisplayDate(s string) (model.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Date{}, fmt.Errorf("empty date")
	}
	t, err := time.Parse(DisplayDate, s)
	if err != nil {
		t, err = dateparse.ParseStrict(s)
		if err != nil {
			return model.Date{}, fmt.Errorf("parsing date %q: %w", s, err)
		}
	}
	d := model.DateOf(t)
	if !d.InRange() {
		return model.Date{}, fmt.Errorf("date %q out of range", s)
	}
	return d, nil
}
