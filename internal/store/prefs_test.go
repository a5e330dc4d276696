package store

import (
	"context"
	"testing"

	"github.com/erazemk/pantrypal/internal/db"
	"github.com/erazemk/pantrypal/internal/model"
)

func TestGetPrefsDefaults(t *testing.T) {
	database := db.NewTestDB(t)
	user := testUser(t, database, "a@example.com")

	prefs, err := GetPrefs(context.Background(), database, user.ID)
	if err != nil {
		t.Fatalf("GetPrefs: %v", err)
	}
	if prefs != model.DefaultPrefs() {
		t.Errorf("expected defaults, got %+v", prefs)
	}
}

func TestSetPrefOverwrites(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := testUser(t, database, "a@example.com")

	SetPref(ctx, database, user.ID, model.PrefLastUnit, "kg")
	SetPref(ctx, database, user.ID, model.PrefLastUnit, "g")
	SetPref(ctx, database, user.ID, model.PrefExpiryMode, model.ExpiryModeDate)

	prefs, err := GetPrefs(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetPrefs: %v", err)
	}
	if prefs.LastUnit != "g" {
		t.Errorf("expected last unit 'g', got %q", prefs.LastUnit)
	}
	if prefs.ExpiryMode != model.ExpiryModeDate {
		t.Errorf("expected expiry mode 'date', got %q", prefs.ExpiryMode)
	}
}

func TestGetPrefsIgnoresUnknownExpiryMode(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := testUser(t, database, "a@example.com")

	SetPref(ctx, database, user.ID, model.PrefExpiryMode, "weeks")

	prefs, _ := GetPrefs(ctx, database, user.ID)
	if prefs.ExpiryMode != model.ExpiryModeDays {
		t.Errorf("expected fallback to days, got %q", prefs.ExpiryMode)
	}
}
