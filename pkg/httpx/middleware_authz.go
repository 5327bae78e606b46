package httpx

import (
	"net/http"
	"slices"
	"strings"
)

// RequirePermission lets the request through only when the verified token
// carries the named permission key. Run it after AuthnMiddleware.
func RequirePermission(key string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeBearerError(w)
				return
			}
			if !slices.Contains(claims.Permissions, key) {
				writePermissionError(w, key)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyPermission lets the request through when the token carries at
// least one of the named permission keys.
func RequireAnyPermission(keys ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeBearerError(w)
				return
			}
			for _, k := range keys {
				if slices.Contains(claims.Permissions, k) {
					next.ServeHTTP(w, r)
					return
				}
			}
			writePermissionError(w, keys...)
		})
	}
}

func writePermissionError(w http.ResponseWriter, required ...string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
	WriteError(w, http.StatusForbidden, "insufficient_permissions", "")
}
