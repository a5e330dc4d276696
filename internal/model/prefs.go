package model

// Preference keys.
const (
	PrefLastUnit   = "last_unit"
	PrefExpiryMode = "expiry_mode"
)

// Expiry entry modes.
const (
	ExpiryModeDate = "date"
	ExpiryModeDays = "days"
)

// Prefs holds the add-item form defaults remembered per user.
type Prefs struct {
	LastUnit   string `json:"last_unit"`
	ExpiryMode string `json:"expiry_mode"`
}

// DefaultPrefs returns the preferences used before a user has chosen any.
func DefaultPrefs() Prefs {
	return Prefs{ExpiryMode: ExpiryModeDays}
}

// ValidExpiryMode reports whether mode is a known expiry entry mode.
func ValidExpiryMode(mode string) bool {
	return mode == ExpiryModeDate || mode == ExpiryModeDays
}
