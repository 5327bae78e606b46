package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/accesshub/accesshub/pkg/jwtx"
	"github.com/accesshub/accesshub/pkg/slogx"
)

// RevocationChecker answers whether a token id has been blacklisted.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthnMiddleware verifies the bearer token and rejects revoked sessions.
// Every failure mode collapses into the same invalid_token response so
// callers learn nothing about why a token was refused.
func AuthnMiddleware(v jwtx.Verifier, revoked RevocationChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				writeBearerError(w)
				return
			}
			if err := claims.ValidateTokenType(jwtx.TokenTypeAccess); err != nil {
				writeBearerError(w)
				return
			}

			isRevoked, err := revoked.IsRevoked(ctx, claims.ID)
			if err != nil {
				log.Error("blacklist check failed", "err", err)
				WriteError(w, http.StatusInternalServerError, "server_error", "")
				return
			}
			if isRevoked {
				log.Warn("rejected revoked token", "jti", claims.ID)
				writeBearerError(w)
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-compliant error response for bearer auth. Deliberately generic.
func writeBearerError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", "")
}
