package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    address       TEXT PRIMARY KEY,
    password_hash TEXT,
    balance       TEXT NOT NULL DEFAULT '0',
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS roles (
    role     TEXT NOT NULL CHECK (role IN ('Miner', 'Manufacturer', 'Masterjeweler', 'Retailer', 'Customer')),
    address  TEXT NOT NULL,
    added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (role, address)
);

CREATE TABLE IF NOT EXISTS items (
    upc              INTEGER PRIMARY KEY CHECK (upc > 0),
    sku              INTEGER NOT NULL,
    product_id       INTEGER NOT NULL,
    current_owner    TEXT NOT NULL,
    origin_miner_id  TEXT NOT NULL,
    mine_name        TEXT NOT NULL DEFAULT '',
    mine_information TEXT NOT NULL DEFAULT '',
    mine_latitude    TEXT NOT NULL DEFAULT '',
    mine_longitude   TEXT NOT NULL DEFAULT '',
    product_notes    TEXT NOT NULL DEFAULT '',
    item_price       TEXT NOT NULL DEFAULT '0',
    product_price    TEXT NOT NULL DEFAULT '0',
    state            INTEGER NOT NULL DEFAULT 0 CHECK (state BETWEEN 0 AND 15),
    manufacturer_id  TEXT NOT NULL,
    masterjeweler_id TEXT NOT NULL,
    retailer_id      TEXT NOT NULL,
    customer_id      TEXT NOT NULL,
    image_hash       TEXT NOT NULL DEFAULT '',
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS item_images (
    upc        INTEGER PRIMARY KEY REFERENCES items(upc),
    image      BLOB NOT NULL,
    image_mime TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    upc        INTEGER NOT NULL DEFAULT 0,
    actor      TEXT NOT NULL,
    payload    TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
