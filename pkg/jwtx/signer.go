package jwtx

// Signer is our interface for anything that can sign hub JWTs. The signing
// strategy (HMAC shared secret vs RSA key pair) is selected once at
// construction and never re-evaluated per call.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)

	// PublicJWKS returns the public keys to publish for verification by
	// independent services. Symmetric signers return an empty set.
	PublicJWKS() JWKS

	Validate() error
}

// NewSignerHS256 creates an HS256 signer from a shared secret.
func NewSignerHS256(secret []byte) (Signer, error) {
	return newHS256Signer(secret)
}

// NewSignerRS256 creates an RS256 signer from PEM bytes with the given key id.
func NewSignerRS256(kid string, pemKey []byte) (Signer, error) {
	return newRS256Signer(kid, pemKey)
}
