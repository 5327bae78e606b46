package jwtx

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs matching the hub's issuance policy. Overridable
// per-service via configuration.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = time.Hour

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Token type claim values. Access tokens carry the full identity snapshot;
// refresh tokens carry nothing but their type, so a refresh always
// re-resolves current privileges instead of replaying stale ones.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims are the hybrid access-token claims published to every dependent
// service. Payloads are decodable without a key, so downstream services can
// read identity fields with a plain base64 decode.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType discriminates access from refresh tokens ("token_type").
	TokenType string `json:"token_type,omitempty"`

	// Tenant and organization identity for scope evaluation.
	TenantID         string `json:"tid,omitempty"`
	TenantName       string `json:"tenant_name,omitempty"`
	OrganizationID   string `json:"oid,omitempty"`
	OrganizationName string `json:"org_name,omitempty"`

	Email string `json:"email,omitempty"`

	// Roles and permission keys granted at issuance time.
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`

	// PermissionHash lets consumers detect a permission-set change in O(1)
	// without decoding the whole permission list.
	PermissionHash string `json:"permission_hash,omitempty"`

	// MFAVerified records whether this session passed a TOTP challenge.
	MFAVerified bool `json:"mfa_verified,omitempty"`
}

// AccessTokenInput carries everything needed to compose access claims.
type AccessTokenInput struct {
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

// NewAccessClaims composes the access-token claim set. jti is caller-supplied
// so the issuer can blacklist the exact identifier later.
func NewAccessClaims(in AccessTokenInput, jti, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   in.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
		TokenType:        TokenTypeAccess,
		TenantID:         in.TenantID,
		TenantName:       in.TenantName,
		OrganizationID:   in.OrganizationID,
		OrganizationName: in.OrganizationName,
		Email:            in.Email,
		Roles:            in.Roles,
		Permissions:      in.Permissions,
		PermissionHash:   PermissionHash(in.Permissions),
		MFAVerified:      in.MFAVerified,
	}
}

// NewRefreshClaims composes the minimal refresh-token claim set: subject,
// issuer, timestamps, and the type marker. No privilege snapshot.
func NewRefreshClaims(subject, jti, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
		TokenType: TokenTypeRefresh,
	}
}

// PermissionHash computes the hex SHA-256 over the permission-key set sorted
// lexicographically and comma-joined. Deterministic regardless of input
// order; an empty set hashes to the empty string.
func PermissionHash(permissions []string) string {
	if len(permissions) == 0 {
		return ""
	}
	sorted := slices.Clone(permissions)
	slices.Sort(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, ",")))
	return hex.EncodeToString(sum[:])
}

// ValidateIssuer checks if the issuer matches the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()
	if c.ExpiresAt == nil || now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}

// ValidateTokenType checks the token_type discriminator.
func (c *Claims) ValidateTokenType(expected string) error {
	if c.TokenType != expected {
		return ErrTokenType
	}
	return nil
}
