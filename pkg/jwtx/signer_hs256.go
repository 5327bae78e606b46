package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinHMACSecretBytes rejects secrets shorter than the HS256 output size.
const MinHMACSecretBytes = 32

// HS256Signer implements the Signer interface using an HMAC-SHA256 shared
// secret. This is the default mode; dependent services verifying these
// tokens must hold the same secret.
type HS256Signer struct {
	secret []byte
	alg    string
}

func newHS256Signer(secret []byte) (*HS256Signer, error) {
	if len(secret) < MinHMACSecretBytes {
		return nil, errors.New("jwtx: HMAC secret must be at least 32 bytes")
	}
	return &HS256Signer{
		secret: secret,
		alg:    jwt.SigningMethodHS256.Alg(),
	}, nil
}

func (s *HS256Signer) Alg() string { return s.alg }

// KID returns "" since symmetric keys are not published and need no header.
func (s *HS256Signer) KID() string { return "" }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// PublicJWKS returns an empty set; there is nothing safe to publish for a
// shared secret.
func (s *HS256Signer) PublicJWKS() JWKS { return JWKS{Keys: []JWK{}} }

// Validate does a quick sanity check that a secret is actually present.
func (s *HS256Signer) Validate() error {
	if len(s.secret) < MinHMACSecretBytes {
		return errors.New("jwtx: HMAC secret too short")
	}
	return nil
}
