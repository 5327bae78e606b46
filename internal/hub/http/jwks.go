package http

import (
	"net/http"

	"github.com/accesshub/accesshub/pkg/httpx"
	"github.com/accesshub/accesshub/pkg/jwtx"
)

// JWKSHandler exposes the JSON Web Key Set for public key discovery.
// In HMAC mode there is nothing to publish and the set is empty.
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jwks := jwtx.JWKS{Keys: []jwtx.JWK{}}
		if keys != nil {
			jwks = keys.PublicJWKS()
		}
		httpx.WriteJSON(w, http.StatusOK, jwks)
	}
}
