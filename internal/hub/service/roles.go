package service

import (
	"context"
	"errors"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
	"github.com/accesshub/accesshub/internal/hub/store"
	"github.com/accesshub/accesshub/pkg/idx"
	"github.com/accesshub/accesshub/pkg/jwtx"
)

// RoleService carries the admin-facing role operations plus the access
// context builder used by authorization checks.
type RoleService struct {
	Store store.Store
}

// authorizeTenantWrite applies the scope lattice to an admin mutation
// targeting the given tenant. Global resources (empty tenant) need a
// GLOBAL-scoped caller; tenant resources need a caller who reaches that
// tenant.
func authorizeTenantWrite(caller domain.AccessContext, tenantID string) error {
	if tenantID == "" {
		if !caller.CanAccessGlobal() {
			return ErrUnauthorized
		}
		return nil
	}
	if !caller.CanAccessTenant(tenantID) {
		return ErrUnauthorized
	}
	return nil
}

// Create makes a new custom role. The scope and tenant pairing is validated
// once here and never mutates afterwards.
func (s *RoleService) Create(ctx context.Context, caller domain.AccessContext, tenantID, name string, scope domain.Scope, description string) (domain.Role, error) {
	if err := domain.ValidateRoleScope(scope, tenantID); err != nil {
		return domain.Role{}, ErrInvalidState
	}
	if err := authorizeTenantWrite(caller, tenantID); err != nil {
		return domain.Role{}, err
	}

	now := time.Now().UTC()
	r := domain.Role{
		ID:          string(idx.New()),
		TenantID:    tenantID,
		Name:        name,
		Scope:       scope,
		Type:        domain.RoleTypeCustom,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Roles().CreateRole(ctx, r); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Role{}, ErrDuplicate
		}
		return domain.Role{}, err
	}
	return r, nil
}

func (s *RoleService) Get(ctx context.Context, id string) (domain.Role, error) {
	r, err := s.Store.Roles().GetRoleByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, ErrNotFound
	}
	return r, err
}

// Grant attaches a permission to a role. SYSTEM roles cannot be modified.
func (s *RoleService) Grant(ctx context.Context, caller domain.AccessContext, roleID, permissionID string) error {
	r, err := s.Store.Roles().GetRoleByID(ctx, roleID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := authorizeTenantWrite(caller, r.TenantID); err != nil {
		return err
	}
	if r.IsSystem() {
		return ErrInvalidState
	}

	if _, err := s.Store.Permissions().GetPermissionByID(ctx, permissionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	err = s.Store.RolePermissions().CreateRolePermission(ctx, domain.RolePermission{
		RoleID:       roleID,
		PermissionID: permissionID,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return ErrDuplicate
	}
	return err
}

// Revoke detaches a permission from a role. SYSTEM roles cannot be modified.
func (s *RoleService) Revoke(ctx context.Context, caller domain.AccessContext, roleID, permissionID string) error {
	r, err := s.Store.Roles().GetRoleByID(ctx, roleID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := authorizeTenantWrite(caller, r.TenantID); err != nil {
		return err
	}
	if r.IsSystem() {
		return ErrInvalidState
	}

	err = s.Store.RolePermissions().DeleteRolePermission(ctx, roleID, permissionID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// BuildAccessContext resolves verified token claims into the evaluator's
// input: the caller's placement plus the scopes of each role named in the
// token. Unknown role names contribute nothing rather than failing the
// request.
func (s *RoleService) BuildAccessContext(ctx context.Context, claims jwtx.Claims) (domain.AccessContext, error) {
	ac := domain.AccessContext{
		UserID:         claims.Subject,
		TenantID:       claims.TenantID,
		OrganizationID: claims.OrganizationID,
	}
	if len(claims.Roles) == 0 {
		return ac, nil
	}

	roles, err := s.Store.Roles().GetRolesByNames(ctx, claims.Roles)
	if err != nil {
		return domain.AccessContext{}, err
	}
	for _, r := range roles {
		ac.RoleScopes = append(ac.RoleScopes, r.Scope)
	}
	return ac, nil
}
