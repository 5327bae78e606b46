package service

import (
	"context"

	"github.com/accesshub/accesshub/internal/hub/domain"
	"github.com/accesshub/accesshub/internal/hub/store"
)

// SessionPolicy controls how many outstanding refresh tokens a user may
// hold at once.
type SessionPolicy string

const (
	// SingleSession keeps at most one refresh token per user. Issuing a new
	// pair invalidates every earlier session.
	SingleSession SessionPolicy = "single"

	// MultiSession lets each device hold its own refresh token.
	MultiSession SessionPolicy = "multi"
)

func (p SessionPolicy) Valid() bool {
	return p == SingleSession || p == MultiSession
}

// storeRefreshRecord persists a refresh token record under the given policy.
// Must run inside the same transaction as the rest of the issuance.
func storeRefreshRecord(ctx context.Context, tx store.Tx, policy SessionPolicy, rec domain.RefreshToken) error {
	if policy == SingleSession {
		if err := tx.RefreshTokens().DeleteUserRefreshTokens(ctx, rec.UserID); err != nil {
			return err
		}
	}
	return tx.RefreshTokens().CreateRefreshToken(ctx, rec)
}
