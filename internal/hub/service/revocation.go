package service

import (
	"context"
	"time"

	"github.com/accesshub/accesshub/internal/hub/store"
)

// DefaultSweepLimit bounds how many expired blacklist entries one sweep pass
// may remove.
const DefaultSweepLimit = 1000

// RevocationService fronts the blacklist store: middleware asks it whether a
// jti has been revoked, logout feeds it, and housekeeping sweeps it.
type RevocationService struct {
	Store      store.Store
	SweepLimit int
}

// Revoke blacklists a token id until the token's own expiry.
func (s *RevocationService) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	return s.Store.BlacklistedTokens().Add(ctx, jti, expiresAt)
}

// IsRevoked reports whether a token id has been blacklisted. This sits on
// the hot path of every authenticated request.
func (s *RevocationService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.Store.BlacklistedTokens().Exists(ctx, jti)
}

// Sweep removes entries whose expiry has passed, at most SweepLimit per
// call. Entries still within their token's lifetime are never touched.
func (s *RevocationService) Sweep(ctx context.Context, now time.Time) (int, error) {
	limit := s.SweepLimit
	if limit <= 0 {
		limit = DefaultSweepLimit
	}
	return s.Store.BlacklistedTokens().Sweep(ctx, now.Unix(), limit)
}
