package sqlite

import (
	"context"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (token_hash, user_id, jti, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		t.TokenHash, t.UserID, t.JTI, t.ExpiresAt.Unix(), t.CreatedAt.Unix())
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	var (
		t                  domain.RefreshToken
		expiresAt, created int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT token_hash, user_id, jti, expires_at, created_at
		 FROM refresh_tokens WHERE token_hash = ?`, hash).
		Scan(&t.TokenHash, &t.UserID, &t.JTI, &expiresAt, &created)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	t.CreatedAt = time.Unix(created, 0).UTC()
	return t, nil
}

// ConsumeRefreshToken relies on the row delete being atomic; with two
// concurrent refreshes of the same token only one DELETE reports an
// affected row, the other gets ErrNotFound.
func (r *refreshTokensRepo) ConsumeRefreshToken(ctx context.Context, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE token_hash = ?`, hash)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *refreshTokensRepo) DeleteUserRefreshTokens(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = ?`, userID)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at <= ?`, now.Unix())
	return err
}
