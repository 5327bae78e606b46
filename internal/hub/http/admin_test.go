package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
	"github.com/accesshub/accesshub/internal/hub/service"
	"github.com/accesshub/accesshub/internal/hub/store"
	"github.com/accesshub/accesshub/internal/hub/store/drivers/sqlite"
	"github.com/accesshub/accesshub/pkg/httpx"
	"github.com/accesshub/accesshub/pkg/idx"
	"github.com/accesshub/accesshub/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type adminEnv struct {
	store   store.Store
	signer  jwtx.Signer
	handler http.Handler
}

// newRoleCreateEnv assembles POST /v1/roles with the same middleware chain
// the router applies.
func newRoleCreateEnv(t *testing.T) *adminEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	secret := []byte("0123456789abcdef0123456789abcdef")
	signer, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)
	verifier := jwtx.NewVerifierHS256(secret, "hub-test")

	roleHandler := &RoleHandler{RoleService: &service.RoleService{Store: st}}
	handler := httpx.Chain(http.HandlerFunc(roleHandler.HandleCreate),
		httpx.AuthnMiddleware(verifier, &service.RevocationService{Store: st}),
		httpx.RequirePermission(PermRoleManage),
	)

	return &adminEnv{store: st, signer: signer, handler: handler}
}

// mintAdminToken signs an access token for a tenant admin whose role names
// resolve to the given scopes through the roles table.
func (e *adminEnv) mintAdminToken(t *testing.T, tenantID string, roleNames []string) string {
	t.Helper()

	claims := jwtx.NewAccessClaims(jwtx.AccessTokenInput{
		UserID:      idx.New().String(),
		TenantID:    tenantID,
		Roles:       roleNames,
		Permissions: []string{PermRoleManage},
	}, idx.New().String(), "hub-test", time.Hour, time.Now().UTC())

	token, err := e.signer.Sign(claims)
	require.NoError(t, err)
	return token
}

func TestRoleCreateEndpointConfinesTenantAdmins(t *testing.T) {
	ctx := context.Background()
	env := newRoleCreateEnv(t)
	now := time.Now().UTC()

	tenantA := domain.Tenant{ID: idx.New().String(), Name: "Acme", CreatedAt: now}
	tenantB := domain.Tenant{ID: idx.New().String(), Name: "Globex", CreatedAt: now}
	require.NoError(t, env.store.Tenants().CreateTenant(ctx, tenantA))
	require.NoError(t, env.store.Tenants().CreateTenant(ctx, tenantB))

	require.NoError(t, env.store.Roles().CreateRole(ctx, domain.Role{
		ID: idx.New().String(), TenantID: tenantA.ID, Name: "TENANT-ADMIN",
		Scope: domain.ScopeTenant, Type: domain.RoleTypeCustom,
		CreatedAt: now, UpdatedAt: now,
	}))

	token := env.mintAdminToken(t, tenantA.ID, []string{"TENANT-ADMIN"})

	post := func(body map[string]string) *httptest.ResponseRecorder {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/v1/roles", bytes.NewReader(b))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("cross-tenant create is forbidden", func(t *testing.T) {
		rec := post(map[string]string{
			"tenant_id": tenantB.ID,
			"name":      "BACKDOOR-ADMIN",
			"scope":     string(domain.ScopeTenant),
		})
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Body.String(), "insufficient_scope")

		got, err := env.store.Roles().GetRolesByNames(ctx, []string{"BACKDOOR-ADMIN"})
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("global role create is forbidden", func(t *testing.T) {
		rec := post(map[string]string{
			"name":  "SUPER",
			"scope": string(domain.ScopeGlobal),
		})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("own tenant create succeeds", func(t *testing.T) {
		rec := post(map[string]string{
			"tenant_id": tenantA.ID,
			"name":      "AUDITOR",
			"scope":     string(domain.ScopeTenant),
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp roleResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, tenantA.ID, resp.TenantID)
	})
}
