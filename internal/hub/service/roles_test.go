package service

import (
	"context"
	"testing"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
	"github.com/accesshub/accesshub/pkg/idx"
	"github.com/accesshub/accesshub/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestRoleCreateValidatesScope(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &RoleService{Store: st}

	tenant := seedTenant(t, st, "Acme")
	caller := tenantCaller(tenant.ID)

	role, err := svc.Create(ctx, caller, tenant.ID, "AUDITOR", domain.ScopeTenant, "read-only reviews")
	require.NoError(t, err)
	require.Equal(t, domain.RoleTypeCustom, role.Type)
	require.Equal(t, domain.ScopeTenant, role.Scope)

	// Tenant-scoped roles need a tenant.
	_, err = svc.Create(ctx, caller, "", "ORPHAN", domain.ScopeTenant, "")
	require.ErrorIs(t, err, ErrInvalidState)

	// Global roles must not be pinned to one tenant.
	_, err = svc.Create(ctx, caller, tenant.ID, "SUPER", domain.ScopeGlobal, "")
	require.ErrorIs(t, err, ErrInvalidState)

	// Same name in the same tenant collides.
	_, err = svc.Create(ctx, caller, tenant.ID, "AUDITOR", domain.ScopeTenant, "")
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestRoleGrantAndRevoke(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	roles := &RoleService{Store: st}
	perms := &PermissionService{Store: st}

	tenant := seedTenant(t, st, "Acme")
	caller := tenantCaller(tenant.ID)
	role, err := roles.Create(ctx, caller, tenant.ID, "AUDITOR", domain.ScopeTenant, "")
	require.NoError(t, err)

	p, err := perms.Create(ctx, globalCaller(), "", "report:read", "view reports")
	require.NoError(t, err)

	require.NoError(t, roles.Grant(ctx, caller, role.ID, p.ID))
	require.ErrorIs(t, roles.Grant(ctx, caller, role.ID, p.ID), ErrDuplicate)

	require.NoError(t, roles.Revoke(ctx, caller, role.ID, p.ID))
	require.ErrorIs(t, roles.Revoke(ctx, caller, role.ID, p.ID), ErrNotFound)

	require.ErrorIs(t, roles.Grant(ctx, caller, "no-such-role", p.ID), ErrNotFound)
	require.ErrorIs(t, roles.Grant(ctx, caller, role.ID, "no-such-permission"), ErrNotFound)
}

func TestSystemRolesAreImmutable(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	roles := &RoleService{Store: st}
	perms := &PermissionService{Store: st}

	svc := seedService(t, st, "billing", "Billing")
	admin, err := st.Roles().GetServiceRoleByName(ctx, svc.ID, domain.RoleAdmin)
	require.NoError(t, err)

	p, err := perms.Create(ctx, globalCaller(), "", "invoice:read", "")
	require.NoError(t, err)

	require.ErrorIs(t, roles.Grant(ctx, globalCaller(), admin.ID, p.ID), ErrInvalidState)
	require.ErrorIs(t, roles.Revoke(ctx, globalCaller(), admin.ID, p.ID), ErrInvalidState)
}

func TestRoleWritesHonorScopeLattice(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	roles := &RoleService{Store: st}
	perms := &PermissionService{Store: st}

	tenantA := seedTenant(t, st, "Acme")
	tenantB := seedTenant(t, st, "Globex")
	callerA := tenantCaller(tenantA.ID)

	// A tenant admin cannot plant roles in another tenant.
	_, err := roles.Create(ctx, callerA, tenantB.ID, "BACKDOOR-ADMIN", domain.ScopeTenant, "")
	require.ErrorIs(t, err, ErrUnauthorized)

	// Nor mint global roles.
	_, err = roles.Create(ctx, callerA, "", "SUPER", domain.ScopeGlobal, "")
	require.ErrorIs(t, err, ErrUnauthorized)

	// A global admin reaches both tenants.
	_, err = roles.Create(ctx, globalCaller(), tenantB.ID, "AUDITOR", domain.ScopeTenant, "")
	require.NoError(t, err)

	// Grant and revoke are confined the same way.
	roleB, err := roles.Create(ctx, tenantCaller(tenantB.ID), tenantB.ID, "REVIEWER", domain.ScopeTenant, "")
	require.NoError(t, err)
	p, err := perms.Create(ctx, globalCaller(), "", "report:read", "")
	require.NoError(t, err)

	require.ErrorIs(t, roles.Grant(ctx, callerA, roleB.ID, p.ID), ErrUnauthorized)
	require.NoError(t, roles.Grant(ctx, tenantCaller(tenantB.ID), roleB.ID, p.ID))
	require.ErrorIs(t, roles.Revoke(ctx, callerA, roleB.ID, p.ID), ErrUnauthorized)
}

func TestBuildAccessContext(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &RoleService{Store: st}

	tenant := seedTenant(t, st, "Acme")
	org := seedOrganization(t, st, tenant.ID, "Radiology")

	now := time.Now().UTC()
	require.NoError(t, st.Roles().CreateRole(ctx, domain.Role{
		ID: idx.New().String(), TenantID: tenant.ID, Name: "TENANT-ADMIN",
		Scope: domain.ScopeTenant, Type: domain.RoleTypeCustom,
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, st.Roles().CreateRole(ctx, domain.Role{
		ID: idx.New().String(), TenantID: tenant.ID, Name: "ORG-VIEWER",
		Scope: domain.ScopeOrganization, Type: domain.RoleTypeCustom,
		CreatedAt: now, UpdatedAt: now,
	}))

	claims := jwtx.Claims{
		TenantID:       tenant.ID,
		OrganizationID: org.ID,
		Roles:          []string{"TENANT-ADMIN", "ORG-VIEWER", "GHOST"},
	}
	claims.Subject = "user-1"

	ac, err := svc.BuildAccessContext(ctx, claims)
	require.NoError(t, err)
	require.Equal(t, "user-1", ac.UserID)
	require.Equal(t, tenant.ID, ac.TenantID)
	require.Equal(t, org.ID, ac.OrganizationID)

	// GHOST is not a registered role and contributes no scope.
	require.Len(t, ac.RoleScopes, 2)
	require.Equal(t, domain.ScopeTenant, ac.CurrentScope())
	require.True(t, ac.CanAccessTenant(tenant.ID))
	require.False(t, ac.CanAccessGlobal())
}

func TestBuildAccessContextWithNoRoles(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &RoleService{Store: st}

	ac, err := svc.BuildAccessContext(ctx, jwtx.Claims{TenantID: "t-1"})
	require.NoError(t, err)
	require.Empty(t, ac.RoleScopes)
	require.False(t, ac.CanAccessTenant("t-1"))
}
