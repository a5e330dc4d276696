package store

import (
	"context"
	"testing"

	"github.com/erazemk/pantrypal/internal/db"
)

func TestGetJWTSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	secret1, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	secret2, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func TestSettings(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	value, err := GetSetting(ctx, database, SettingLastRelabel)
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if value != "" {
		t.Errorf("expected empty value for missing key, got %q", value)
	}

	for _, v := range []string{"2026-03-01", "2026-03-02"} {
		if err := SetSetting(ctx, database, SettingLastRelabel, v); err != nil {
			t.Fatalf("SetSetting: %v", err)
		}
	}

	value, err = GetSetting(ctx, database, SettingLastRelabel)
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if value != "2026-03-02" {
		t.Errorf("expected last written value, got %q", value)
	}
}
