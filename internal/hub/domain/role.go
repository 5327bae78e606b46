package domain

import (
	"errors"
	"time"
)

// RoleType distinguishes platform-seeded roles from tenant-created ones.
// SYSTEM roles are immutable.
type RoleType string

const (
	RoleTypeSystem RoleType = "SYSTEM"
	RoleTypeCustom RoleType = "CUSTOM"
)

// Default role names every registered service carries.
const (
	RoleAdmin  = "ADMIN"
	RoleEditor = "EDITOR"
	RoleViewer = "VIEWER"
)

var (
	ErrGlobalRoleWithTenant = errors.New("domain: GLOBAL role must not carry a tenant")
	ErrScopedRoleNoTenant   = errors.New("domain: TENANT/ORGANIZATION role requires a tenant")
	ErrInvalidScope         = errors.New("domain: invalid role scope")
)

// Role groups permission grants at one of the three scope levels. The
// tenant invariant is enforced at creation and the pairing never mutates:
// GLOBAL roles carry no tenant, TENANT/ORGANIZATION roles always do.
// ServiceID links a service's default roles (ADMIN/EDITOR/VIEWER) used by
// sync auto-mapping.
type Role struct {
	ID          string
	TenantID    string // "" for GLOBAL roles
	ServiceID   string // "" unless a service default role
	Name        string
	Scope       Scope
	Type        RoleType
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsSystem reports whether the role is immutable.
func (r Role) IsSystem() bool { return r.Type == RoleTypeSystem }

// ValidateRoleScope checks the scope/tenant pairing invariant.
func ValidateRoleScope(scope Scope, tenantID string) error {
	if !scope.Valid() {
		return ErrInvalidScope
	}
	if scope == ScopeGlobal && tenantID != "" {
		return ErrGlobalRoleWithTenant
	}
	if scope != ScopeGlobal && tenantID == "" {
		return ErrScopedRoleNoTenant
	}
	return nil
}

// RolePermission is a pure grant edge identified by its composite key. It
// has no lifecycle beyond create and delete.
type RolePermission struct {
	RoleID       string
	PermissionID string
	CreatedAt    time.Time
}
