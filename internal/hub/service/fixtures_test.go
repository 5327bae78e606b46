package service

import (
	"context"
	"testing"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
	"github.com/accesshub/accesshub/internal/hub/store"
	"github.com/accesshub/accesshub/internal/hub/store/drivers/sqlite"
	"github.com/accesshub/accesshub/pkg/cryptox"
	"github.com/accesshub/accesshub/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func globalCaller() domain.AccessContext {
	return domain.AccessContext{UserID: "admin", RoleScopes: []domain.Scope{domain.ScopeGlobal}}
}

func tenantCaller(tenantID string) domain.AccessContext {
	return domain.AccessContext{UserID: "tenant-admin", TenantID: tenantID, RoleScopes: []domain.Scope{domain.ScopeTenant}}
}

func seedTenant(t *testing.T, st store.Store, name string) domain.Tenant {
	t.Helper()

	tenant := domain.Tenant{ID: idx.New().String(), Name: name, CreatedAt: time.Now().UTC()}
	require.NoError(t, st.Tenants().CreateTenant(context.Background(), tenant))
	return tenant
}

func seedOrganization(t *testing.T, st store.Store, tenantID, name string) domain.Organization {
	t.Helper()

	org := domain.Organization{ID: idx.New().String(), TenantID: tenantID, Name: name, CreatedAt: time.Now().UTC()}
	require.NoError(t, st.Organizations().CreateOrganization(context.Background(), org))
	return org
}

// seedService registers a client service along with its three default roles.
func seedService(t *testing.T, st store.Store, code, name string) domain.Service {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	svc := domain.Service{ID: idx.New().String(), Code: code, Name: name, CreatedAt: now}
	require.NoError(t, st.Services().CreateService(ctx, svc))

	for _, roleName := range []string{domain.RoleAdmin, domain.RoleEditor, domain.RoleViewer} {
		require.NoError(t, st.Roles().CreateRole(ctx, domain.Role{
			ID:        idx.New().String(),
			ServiceID: svc.ID,
			Name:      roleName,
			Scope:     domain.ScopeGlobal,
			Type:      domain.RoleTypeSystem,
			CreatedAt: now,
			UpdatedAt: now,
		}))
	}
	return svc
}

func seedUser(t *testing.T, st store.Store, tenantID, orgID, email, password, mfaSecret string) domain.User {
	t.Helper()
	now := time.Now().UTC()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	user := domain.User{
		ID:             idx.New().String(),
		TenantID:       tenantID,
		OrganizationID: orgID,
		Email:          email,
		PasswordHash:   hash,
		Status:         domain.UserStatusActive,
		MFASecret:      mfaSecret,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), user))
	return user
}
