package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPermissionHash(t *testing.T) {
	t.Parallel()

	t.Run("order independent", func(t *testing.T) {
		a := PermissionHash([]string{"user:read", "user:write", "order:read"})
		b := PermissionHash([]string{"order:read", "user:write", "user:read"})
		require.Equal(t, a, b)
		require.Len(t, a, 64) // hex sha256
	})

	t.Run("different sets differ", func(t *testing.T) {
		a := PermissionHash([]string{"user:read"})
		b := PermissionHash([]string{"user:write"})
		require.NotEqual(t, a, b)
	})

	t.Run("empty set hashes to empty string", func(t *testing.T) {
		require.Empty(t, PermissionHash(nil))
		require.Empty(t, PermissionHash([]string{}))
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		in := []string{"z:read", "a:read"}
		_ = PermissionHash(in)
		require.Equal(t, []string{"z:read", "a:read"}, in)
	})
}

func TestNewAccessClaims(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	in := AccessTokenInput{
		UserID:           "u1",
		TenantID:         "t1",
		TenantName:       "Acme",
		OrganizationID:   "o1",
		OrganizationName: "Radiology",
		Email:            "alice@acme.example",
		Roles:            []string{"ADMIN"},
		Permissions:      []string{"user:read", "user:write"},
		MFAVerified:      true,
	}

	c := NewAccessClaims(in, "jti-1", "hub", time.Hour, now)

	require.Equal(t, TokenTypeAccess, c.TokenType)
	require.Equal(t, "u1", c.Subject)
	require.Equal(t, "hub", c.Issuer)
	require.Equal(t, "jti-1", c.ID)
	require.Equal(t, now.Add(time.Hour), c.ExpiresAt.Time)
	require.Equal(t, "t1", c.TenantID)
	require.Equal(t, "Radiology", c.OrganizationName)
	require.True(t, c.MFAVerified)
	require.Equal(t, PermissionHash(in.Permissions), c.PermissionHash)
}

func TestNewRefreshClaims(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewRefreshClaims("u1", "jti-2", "hub", 24*time.Hour, now)

	require.Equal(t, TokenTypeRefresh, c.TokenType)
	require.Equal(t, "u1", c.Subject)
	require.Equal(t, "jti-2", c.ID)

	// A refresh token must never carry the privilege snapshot.
	require.Empty(t, c.TenantID)
	require.Empty(t, c.Roles)
	require.Empty(t, c.Permissions)
	require.Empty(t, c.PermissionHash)
}

func TestValidateTokenType(t *testing.T) {
	t.Parallel()

	access := NewAccessClaims(AccessTokenInput{UserID: "u1"}, "j", "hub", time.Hour, time.Now())
	require.NoError(t, access.ValidateTokenType(TokenTypeAccess))
	require.ErrorIs(t, access.ValidateTokenType(TokenTypeRefresh), ErrTokenType)
}
