package store

import (
	"context"
	"fmt"
	"time"
)

// RevokeToken records a session's JTI as revoked until expiresAt and drops
// revocations whose tokens can no longer validate.
func RevokeToken(ctx context.Context, q DBTX, jti string, expiresAt time.Time) error {
	if _, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
		jti, expiresAt.UTC(),
	); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	if _, err := PurgeRevokedTokens(ctx, q, time.Now()); err != nil {
		return err
	}
	return nil
}

// PurgeRevokedTokens deletes revocations that expired before now and reports
// how many were removed.
func PurgeRevokedTokens(ctx context.Context, q DBTX, now time.Time) (int64, error) {
	res, err := q.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, now.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("purging revoked tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purging revoked tokens: %w", err)
	}
	return n, nil
}

// IsTokenRevoked reports whether the session with the given JTI was revoked.
func IsTokenRevoked(ctx context.Context, q DBTX, jti string) (bool, error) {
	var revoked bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = ?)`, jti,
	).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return revoked, nil
}
