// Package freshness classifies pantry items by how many days remain until
// they expire.
package freshness

import (
	"fmt"
	"sort"

	"github.com/erazemk/pantrypal/internal/model"
)

// Bucket is a freshness class that drives the list's colour indicator.
type Bucket string

// Buckets, from most to least urgent.
const (
	Expired Bucket = "expired"
	Today   Bucket = "today"
	Soon    Bucket = "soon"
	Fresh   Bucket = "fresh"
)

// SoonDays is the last day count still considered "soon".
const SoonDays = 7

// Status is the classification of a single item.
type Status struct {
	Days      int    `json:"days_until_expiry"`
	Bucket    Bucket `json:"bucket"`
	Label     string `json:"label"`
	Indicator string `json:"indicator"`
}

// indicators maps buckets to the colours the client paints.
var indicators = map[Bucket]string{
	Expired: "#CC0000",
	Today:   "#FF8800",
	Soon:    "#FFBB33",
	Fresh:   "#669900",
}

// Classify returns the bucket and label for an item that expires in days
// days. Negative values mean it expired that many days ago.
func Classify(days int) Status {
	s := Status{Days: days}
	switch {
	case days < 0:
		s.Bucket = Expired
		s.Label = fmt.Sprintf("Expired %d days ago", -days)
	case days == 0:
		s.Bucket = Today
		s.Label = "Expires TODAY!"
	case days == 1:
		s.Bucket = Soon
		s.Label = "Expires in 1 day"
	case days <= SoonDays:
		s.Bucket = Soon
		s.Label = fmt.Sprintf("Expires in %d days", days)
	default:
		s.Bucket = Fresh
		s.Label = fmt.Sprintf("Expires in %d days", days)
	}
	s.Indicator = indicators[s.Bucket]
	return s
}

// ClassifyItem classifies item relative to today.
func ClassifyItem(item model.Item, today model.Date) Status {
	return Classify(item.DaysUntilExpiry(today))
}

// SortByExpiry orders items by ascending days until expiry. Items that
// expire on the same day keep their relative order.
func SortByExpiry(items []model.Item, today model.Date) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DaysUntilExpiry(today) < items[j].DaysUntilExpiry(today)
	})
}
