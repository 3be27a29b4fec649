package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/erazemk/diamondbase/internal/model"
)

// Setting keys.
const (
	settingJWTSecret = "jwt_secret"
	settingOwner     = "owner"
	settingDestroyed = "destroyed"
)

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, q DBTX) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		settingJWTSecret, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	// Always read back (either our insert or the existing value).
	secret, _, err := GetSetting(ctx, q, settingJWTSecret)
	if err != nil {
		return "", err
	}
	return secret, nil
}

// GetSetting returns a setting value and whether it is set.
func GetSetting(ctx context.Context, q DBTX, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting stores a setting value.
func SetSetting(ctx context.Context, q DBTX, key, value string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	return nil
}

// GetOwner returns the administrative owner and whether the ledger has been
// deployed at all.
func GetOwner(ctx context.Context, q DBTX) (model.Address, bool, error) {
	v, ok, err := GetSetting(ctx, q, settingOwner)
	if err != nil || !ok {
		return "", ok, err
	}
	return model.Address(v), true, nil
}

// SetOwner stores the administrative owner.
func SetOwner(ctx context.Context, q DBTX, owner model.Address) error {
	return SetSetting(ctx, q, settingOwner, string(owner))
}

// IsDestroyed reports whether the ledger has been permanently destroyed.
func IsDestroyed(ctx context.Context, q DBTX) (bool, error) {
	v, _, err := GetSetting(ctx, q, settingDestroyed)
	if err != nil {
		return false, err
	}
	return v == "1", nil
}

// DestroyLedger marks the ledger destroyed and purges its items, images,
// role memberships and events. Account balances are left alone.
func DestroyLedger(ctx context.Context, q DBTX) error {
	stmts := []string{
		`DELETE FROM item_images`,
		`DELETE FROM items`,
		`DELETE FROM roles`,
		`DELETE FROM events`,
	}
	for _, s := range stmts {
		if _, err := q.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("purging ledger: %w", err)
		}
	}
	return SetSetting(ctx, q, settingDestroyed, "1")
}
