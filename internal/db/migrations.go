package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: item history lookups filter events by UPC.
	`CREATE INDEX IF NOT EXISTS idx_events_upc ON events(upc)`,
	// Migration 2: role listings are per account as often as per role.
	`CREATE INDEX IF NOT EXISTS idx_roles_address ON roles(address)`,
}

// Migrate ensures the schema and then runs the migrations.
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
