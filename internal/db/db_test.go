package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func TestMigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.sqlite3")

	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	for i := 0; i < 2; i++ {
		if err := Migrate(database); err != nil {
			t.Fatalf("Migrate run %d: %v", i+1, err)
		}
	}

	var count int
	err = database.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('accounts', 'roles', 'items', 'events', 'settings')`,
	).Scan(&count)
	if err != nil {
		t.Fatalf("counting tables: %v", err)
	}
	if count != 5 {
		t.Errorf("expected 5 core tables, got %d", count)
	}
}

func TestItemStateConstraint(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(
		`INSERT INTO items (upc, sku, product_id, current_owner, origin_miner_id, state,
		                    manufacturer_id, masterjeweler_id, retailer_id, customer_id)
		 VALUES (1, 1, 2, 'a', 'a', 16, 'z', 'z', 'z', 'z')`,
	)
	if err == nil {
		t.Error("expected check constraint to reject state 16")
	}

	_, err = database.Exec(
		`INSERT INTO items (upc, sku, product_id, current_owner, origin_miner_id, state,
		                    manufacturer_id, masterjeweler_id, retailer_id, customer_id)
		 VALUES (0, 0, 0, 'a', 'a', 0, 'z', 'z', 'z', 'z')`,
	)
	if err == nil {
		t.Error("expected check constraint to reject upc 0")
	}
}

func TestOpenAppliesPragmasPerConnection(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "ledger.sqlite3"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()
	database.SetMaxOpenConns(2)

	// Hold one connection so the second query runs on a fresh one.
	conn, err := database.Conn(context.Background())
	if err != nil {
		t.Fatalf("Conn: %v", err)
	}
	defer conn.Close()

	for _, q := range []*sql.Row{
		conn.QueryRowContext(context.Background(), `PRAGMA busy_timeout`),
		database.QueryRow(`PRAGMA busy_timeout`),
	} {
		var timeout int
		if err := q.Scan(&timeout); err != nil {
			t.Fatalf("reading busy_timeout: %v", err)
		}
		if timeout != 5000 {
			t.Errorf("expected busy_timeout 5000, got %d", timeout)
		}
	}

	var fk int
	if err := database.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("reading foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys on, got %d", fk)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Error("expected error for empty path")
	}
}
