package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurrentScope(t *testing.T) {
	t.Parallel()

	t.Run("empty roles yields zero scope", func(t *testing.T) {
		ac := AccessContext{}
		require.Equal(t, Scope(""), ac.CurrentScope())
		require.False(t, ac.CanAccessGlobal())
	})

	t.Run("widest role wins", func(t *testing.T) {
		ac := AccessContext{RoleScopes: []Scope{ScopeOrganization, ScopeGlobal, ScopeTenant}}
		require.Equal(t, ScopeGlobal, ac.CurrentScope())
	})

	t.Run("unknown scope never widens access", func(t *testing.T) {
		ac := AccessContext{RoleScopes: []Scope{"SUPERDUPER", ScopeOrganization}}
		require.Equal(t, ScopeOrganization, ac.CurrentScope())
	})
}

func TestCanAccessTenant(t *testing.T) {
	t.Parallel()

	t.Run("global reaches any tenant", func(t *testing.T) {
		ac := AccessContext{TenantID: "t1", RoleScopes: []Scope{ScopeGlobal}}
		require.True(t, ac.CanAccessTenant("t1"))
		require.True(t, ac.CanAccessTenant("t2"))
	})

	t.Run("tenant scope is confined to own tenant", func(t *testing.T) {
		ac := AccessContext{TenantID: "t1", RoleScopes: []Scope{ScopeTenant}}
		require.True(t, ac.CanAccessTenant("t1"))
		require.False(t, ac.CanAccessTenant("t2"))
	})

	t.Run("organization scope still reads own tenant", func(t *testing.T) {
		ac := AccessContext{TenantID: "t1", OrganizationID: "o1", RoleScopes: []Scope{ScopeOrganization}}
		require.True(t, ac.CanAccessTenant("t1"))
		require.False(t, ac.CanAccessTenant("t2"))
	})

	t.Run("caller without tenant reaches nothing", func(t *testing.T) {
		ac := AccessContext{RoleScopes: []Scope{ScopeTenant}}
		require.False(t, ac.CanAccessTenant("t1"))
		require.False(t, ac.CanAccessTenant(""))
	})

	t.Run("no roles means no access", func(t *testing.T) {
		ac := AccessContext{TenantID: "t1"}
		require.False(t, ac.CanAccessTenant("t1"))
	})
}

func TestCanAccessOrganization(t *testing.T) {
	t.Parallel()

	t.Run("global reaches any organization", func(t *testing.T) {
		ac := AccessContext{RoleScopes: []Scope{ScopeGlobal}}
		require.True(t, ac.CanAccessOrganization("o9", "t9"))
	})

	t.Run("tenant admin reaches every org in own tenant", func(t *testing.T) {
		ac := AccessContext{TenantID: "t1", RoleScopes: []Scope{ScopeTenant}}
		require.True(t, ac.CanAccessOrganization("o1", "t1"))
		require.True(t, ac.CanAccessOrganization("o2", "t1"))
		require.False(t, ac.CanAccessOrganization("o3", "t2"))
	})

	t.Run("organization scope is confined to own org", func(t *testing.T) {
		ac := AccessContext{TenantID: "t1", OrganizationID: "o1", RoleScopes: []Scope{ScopeOrganization}}
		require.True(t, ac.CanAccessOrganization("o1", "t1"))
		require.False(t, ac.CanAccessOrganization("o2", "t1"))
	})

	t.Run("caller without org placement reaches no org at org scope", func(t *testing.T) {
		ac := AccessContext{TenantID: "t1", RoleScopes: []Scope{ScopeOrganization}}
		require.False(t, ac.CanAccessOrganization("o1", "t1"))
	})
}

func TestValidateRoleScope(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateRoleScope(ScopeGlobal, ""))
	require.NoError(t, ValidateRoleScope(ScopeTenant, "t1"))
	require.NoError(t, ValidateRoleScope(ScopeOrganization, "t1"))

	require.ErrorIs(t, ValidateRoleScope(ScopeGlobal, "t1"), ErrGlobalRoleWithTenant)
	require.ErrorIs(t, ValidateRoleScope(ScopeTenant, ""), ErrScopedRoleNoTenant)
	require.ErrorIs(t, ValidateRoleScope(ScopeOrganization, ""), ErrScopedRoleNoTenant)
	require.ErrorIs(t, ValidateRoleScope("WIDE", "t1"), ErrInvalidScope)
}
