package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type blacklistRepo struct {
	db dbtx
}

func (r *blacklistRepo) Add(ctx context.Context, jti string, expiresAt time.Time) error {
	// Re-adding an already revoked token is a no-op, not a conflict.
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO blacklisted_tokens (jti, expires_at) VALUES (?, ?)
		 ON CONFLICT (jti) DO NOTHING`,
		jti, expiresAt.Unix())
	return err
}

func (r *blacklistRepo) Exists(ctx context.Context, jti string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM blacklisted_tokens WHERE jti = ?`, jti).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Sweep removes the oldest-expiring entries up to limit. The subquery is
// ordered by expires_at so each pass clears the entries closest to (or past)
// expiry first, keeping a single pass bounded regardless of backlog size.
func (r *blacklistRepo) Sweep(ctx context.Context, nowEpoch int64, limit int) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM blacklisted_tokens WHERE jti IN (
		     SELECT jti FROM blacklisted_tokens
		     WHERE expires_at <= ?
		     ORDER BY expires_at
		     LIMIT ?
		 )`, nowEpoch, limit)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
