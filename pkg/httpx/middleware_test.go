package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/accesshub/accesshub/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type fakeRevocation struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocation) IsRevoked(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

func signedToken(t *testing.T, secret []byte, claims jwtx.Claims) string {
	t.Helper()
	signer, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)
	token, err := signer.Sign(claims)
	require.NoError(t, err)
	return token
}

func TestAuthnMiddleware(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	verifier := jwtx.NewVerifierHS256(secret, "hub-test")
	now := time.Now().UTC()

	okEcho := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(UserIDFromContext(r.Context())))
	})

	accessToken := signedToken(t, secret, jwtx.NewAccessClaims(jwtx.AccessTokenInput{
		UserID: "user-1", TenantID: "tenant-1", Email: "a@b.example",
	}, "jti-access", "hub-test", time.Hour, now))
	refreshToken := signedToken(t, secret, jwtx.NewRefreshClaims("user-1", "jti-refresh", "hub-test", time.Hour, now))
	revokedToken := signedToken(t, secret, jwtx.NewAccessClaims(jwtx.AccessTokenInput{
		UserID: "user-2",
	}, "jti-revoked", "hub-test", time.Hour, now))

	rev := &fakeRevocation{revoked: map[string]bool{"jti-revoked": true}}
	handler := AuthnMiddleware(verifier, rev)(okEcho)

	tests := []struct {
		name       string
		authz      string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer " + accessToken, http.StatusOK, "user-1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, ""},
		{"refresh token rejected", "Bearer " + refreshToken, http.StatusUnauthorized, ""},
		{"revoked token", "Bearer " + revokedToken, http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authz != "" {
				req.Header.Set("Authorization", tt.authz)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				require.Contains(t, rec.Header().Get("WWW-Authenticate"), `invalid_token`)
			}
			if tt.wantBody != "" {
				require.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestAuthnMiddlewareBlacklistFailureIsServerError(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	verifier := jwtx.NewVerifierHS256(secret, "hub-test")

	token := signedToken(t, secret, jwtx.NewAccessClaims(jwtx.AccessTokenInput{
		UserID: "user-1",
	}, "jti-1", "hub-test", time.Hour, time.Now().UTC()))

	rev := &fakeRevocation{err: context.DeadlineExceeded}
	handler := AuthnMiddleware(verifier, rev)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run when the blacklist is unavailable")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Fail closed: an unreachable blacklist must not admit the request.
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	withClaims := func(r *http.Request, perms []string) *http.Request {
		claims := jwtx.Claims{Permissions: perms}
		return r.WithContext(contextWithAuth(r.Context(), claims))
	}

	t.Run("granted", func(t *testing.T) {
		req := withClaims(httptest.NewRequest(http.MethodPost, "/", nil), []string{"endpoint:sync"})
		rec := httptest.NewRecorder()
		RequirePermission("endpoint:sync")(ok).ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("denied", func(t *testing.T) {
		req := withClaims(httptest.NewRequest(http.MethodPost, "/", nil), []string{"report:read"})
		rec := httptest.NewRecorder()
		RequirePermission("endpoint:sync")(ok).ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "insufficient_scope")
	})

	t.Run("no claims in context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequirePermission("endpoint:sync")(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("any-of", func(t *testing.T) {
		req := withClaims(httptest.NewRequest(http.MethodGet, "/", nil), []string{"role:manage"})
		rec := httptest.NewRecorder()
		RequireAnyPermission("permission:manage", "role:manage")(ok).ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestChainOrdering(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), tag("outer"), tag("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}
