package domain

import "time"

// BearerTokenType is the token_type reported on every issued pair.
const BearerTokenType = "Bearer"

// TokenPair is the result of an issuance: a signed access token plus a
// signed refresh token and their lifetimes.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	ExpiresIn        time.Duration // access token lifetime
	RefreshExpiresIn time.Duration
	TokenType        string // always "Bearer"
}

// TokenClaims is the issuance input: the identity snapshot composed into an
// access token. It is ephemeral and never stored server-side except as the
// opaque signed string.
type TokenClaims struct {
	UserID           string
	TenantID         string
	TenantName       string
	OrganizationID   string
	OrganizationName string
	Email            string
	Roles            []string
	Permissions      []string
	MFAVerified      bool
}

// RefreshToken is the stored record of an outstanding refresh token. Only
// the SHA-256 fingerprint of the signed token is persisted.
type RefreshToken struct {
	UserID    string
	JTI       string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// BlacklistedToken is a revoked token identifier. It stays in the store
// until its own expiry has passed; removing it early would let a revoked
// token regain validity.
type BlacklistedToken struct {
	JTI       string
	ExpiresAt time.Time
}
