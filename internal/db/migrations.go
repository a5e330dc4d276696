package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: snapshot queries read an owner's items in expiry order.
	`CREATE INDEX IF NOT EXISTS idx_pantry_user_expiry
	     ON pantry(user_id, expiry_date)`,
}

// Migrate ensures the schema exists and then applies migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
