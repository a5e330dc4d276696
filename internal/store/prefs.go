package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/pantrypal/internal/model"
)

// GetPrefs returns a user's preferences, falling back to the defaults for
// keys that were never set.
func GetPrefs(ctx context.Context, db *sql.DB, userID string) (model.Prefs, error) {
	prefs := model.DefaultPrefs()

	rows, err := db.QueryContext(ctx,
		`SELECT key, value FROM user_prefs WHERE user_id = ?`, userID,
	)
	if err != nil {
		return prefs, fmt.Errorf("listing prefs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return prefs, fmt.Errorf("scanning pref: %w", err)
		}
		switch key {
		case model.PrefLastUnit:
			prefs.LastUnit = value
		case model.PrefExpiryMode:
			if model.ValidExpiryMode(value) {
				prefs.ExpiryMode = value
			}
		}
	}
	return prefs, rows.Err()
}

// SetPref stores a single preference value, replacing any previous one.
func SetPref(ctx context.Context, db *sql.DB, userID, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO user_prefs (user_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value`,
		userID, key, value,
	)
	if err != nil {
		return fmt.Errorf("setting pref %s: %w", key, err)
	}
	return nil
}
