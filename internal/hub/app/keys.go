package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/accesshub/accesshub/pkg/jwtx"
)

// InitSigning builds the signer, verifier, and (for RSA) the public key set
// from configuration. The mode is fixed at boot; switching modes in a live
// deployment invalidates every outstanding token.
func InitSigning(cfg Config) (jwtx.Signer, jwtx.Verifier, *jwtx.KeySet, error) {
	switch cfg.SigningMode {
	case "hmac":
		if cfg.HMACSecret == "" {
			return nil, nil, nil, errors.New("HUB_HMAC_SECRET is required in hmac mode")
		}
		signer, err := jwtx.NewSignerHS256([]byte(cfg.HMACSecret))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("hmac signer: %w", err)
		}
		verifier := jwtx.NewVerifierHS256([]byte(cfg.HMACSecret), cfg.Issuer)
		return signer, verifier, nil, nil

	case "rsa":
		if cfg.RSAKeyPath == "" {
			return nil, nil, nil, errors.New("HUB_RSA_KEY_PATH is required in rsa mode")
		}
		pemKey, err := os.ReadFile(cfg.RSAKeyPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("read rsa key: %w", err)
		}
		signer, err := jwtx.NewSignerRS256(cfg.RSAKeyID, pemKey)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("rsa signer: %w", err)
		}

		keys := jwtx.NewKeySet()
		if err := keys.AddSigner(signer); err != nil {
			return nil, nil, nil, err
		}
		verifier := jwtx.NewVerifierRS256(keys, cfg.Issuer)
		return signer, verifier, keys, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown signing mode %q", cfg.SigningMode)
	}
}
