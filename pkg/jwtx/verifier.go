package jwtx

import "errors"

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrTokenType    = errors.New("jwtx: unexpected token type")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// NewVerifierHS256 returns a Verifier for HMAC-signed tokens.
func NewVerifierHS256(secret []byte, issuer string) Verifier {
	return &HS256Verifier{secret: secret, issuer: issuer}
}

// NewVerifierRS256 returns a Verifier resolving keys by kid from a KeySet.
func NewVerifierRS256(keys *KeySet, issuer string) Verifier {
	return &RS256Verifier{keys: keys, issuer: issuer}
}
