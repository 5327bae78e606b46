package store

import (
	"context"
	"errors"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable; inter-entity references are bare ids resolved through
// explicit repository calls, never implicit joins on an object graph.
type Store interface {
	Permissions() Permissions
	Endpoints() Endpoints
	Roles() Roles
	RolePermissions() RolePermissions
	Services() Services
	Users() Users
	Tenants() Tenants
	Organizations() Organizations
	RefreshTokens() RefreshTokens
	BlacklistedTokens() BlacklistedTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn returns
	// an error and committing otherwise. This is the recommended way to run
	// multi-step operations that must be atomic (sync batches, refresh
	// rotation).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It exposes the same repos plus
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Permissions interface {
	// GetPermissionByID returns a permission by id.
	GetPermissionByID(ctx context.Context, id string) (domain.Permission, error)

	// GetPermissionByKey returns a permission by its "resource:action" key.
	GetPermissionByKey(ctx context.Context, key string) (domain.Permission, error)

	// GetPermissionsByKeys bulk-fetches permissions for the given keys in
	// one query. Missing keys are simply absent from the result.
	GetPermissionsByKeys(ctx context.Context, keys []string) ([]domain.Permission, error)

	// CreatePermission inserts a new permission (id provided by app via
	// ULID). Returns ErrAlreadyExists on a duplicate key.
	CreatePermission(ctx context.Context, p domain.Permission) error

	// UpdatePermissionDescription mutates the description and bumps
	// updated_at.
	UpdatePermissionDescription(ctx context.Context, id, description string) error

	// DeletePermission removes a permission row.
	DeletePermission(ctx context.Context, id string) error
}

type Endpoints interface {
	// GetEndpoint resolves a single endpoint by its natural key, excluding
	// soft-deleted rows.
	GetEndpoint(ctx context.Context, key domain.EndpointKey) (domain.PermissionEndpoint, error)

	// GetEndpointsByKeys bulk-fetches existing endpoints for the given
	// service and URL patterns in one query. Soft-deleted rows are included
	// so reconciliation does not recreate a deliberately removed mapping.
	GetEndpointsByKeys(ctx context.Context, serviceName string, urlPatterns []string) ([]domain.PermissionEndpoint, error)

	// CreateEndpoint inserts a new endpoint mapping. Returns
	// ErrAlreadyExists on a duplicate natural key.
	CreateEndpoint(ctx context.Context, e domain.PermissionEndpoint) error

	// ListActiveEndpoints returns every non-deleted endpoint, for the
	// gateway's full active-spec dump.
	ListActiveEndpoints(ctx context.Context) ([]domain.PermissionEndpoint, error)

	// SoftDeleteEndpoint marks an endpoint as deleted without removing the
	// row.
	SoftDeleteEndpoint(ctx context.Context, id string, at time.Time) error
}

type Roles interface {
	// GetRoleByID fetches a role by its id.
	GetRoleByID(ctx context.Context, id string) (domain.Role, error)

	// GetRolesByNames fetches roles by name, for resolving claim role names
	// into scopes.
	GetRolesByNames(ctx context.Context, names []string) ([]domain.Role, error)

	// GetServiceRoleByName fetches a service default role (ADMIN, EDITOR,
	// VIEWER) for sync auto-mapping.
	GetServiceRoleByName(ctx context.Context, serviceID, name string) (domain.Role, error)

	// CreateRole inserts a new role. Returns ErrAlreadyExists on duplicate
	// (tenant, name).
	CreateRole(ctx context.Context, r domain.Role) error
}

type RolePermissions interface {
	// GetGrantedPermissionIDs filters the candidate permission ids down to
	// the ones the role already holds, in one query.
	GetGrantedPermissionIDs(ctx context.Context, roleID string, permissionIDs []string) ([]string, error)

	// CreateRolePermission inserts a grant edge. Returns ErrAlreadyExists
	// on a duplicate (role, permission) pair.
	CreateRolePermission(ctx context.Context, rp domain.RolePermission) error

	// DeleteRolePermission removes a grant edge.
	DeleteRolePermission(ctx context.Context, roleID, permissionID string) error
}

type Services interface {
	// GetServiceByCode resolves a registered service by its code.
	GetServiceByCode(ctx context.Context, code string) (domain.Service, error)

	// CreateService registers a client service.
	CreateService(ctx context.Context, s domain.Service) error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user.
	CreateUser(ctx context.Context, u domain.User) error

	// AssignRole grants a role to a user.
	AssignRole(ctx context.Context, userID, roleID string) error

	// GetUserRoleNames returns the names of the user's roles.
	GetUserRoleNames(ctx context.Context, userID string) ([]string, error)

	// GetUserPermissionKeys returns the distinct permission keys granted
	// through the user's roles.
	GetUserPermissionKeys(ctx context.Context, userID string) ([]string, error)

	// TouchLastLogin records a successful login.
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
}

type Tenants interface {
	GetTenantByID(ctx context.Context, id string) (domain.Tenant, error)
	CreateTenant(ctx context.Context, t domain.Tenant) error
}

type Organizations interface {
	GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error)
	CreateOrganization(ctx context.Context, o domain.Organization) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the record matching a token
	// fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// ConsumeRefreshToken deletes the record matching the fingerprint,
	// returning ErrNotFound when no row was removed. Exactly one concurrent
	// caller can win this, which is what makes rotation at-most-once.
	ConsumeRefreshToken(ctx context.Context, hash string) error

	// DeleteUserRefreshTokens removes every record for a user
	// (single-session overwrite, logout).
	DeleteUserRefreshTokens(ctx context.Context, userID string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) error
}

type BlacklistedTokens interface {
	// Add inserts a revoked token identifier. Re-adding an existing jti is
	// a no-op. The caller must not report a logout as successful until Add
	// has returned nil.
	Add(ctx context.Context, jti string, expiresAt time.Time) error

	// Exists is the hot-path membership test; it runs as an indexed point
	// lookup, never a scan.
	Exists(ctx context.Context, jti string) (bool, error)

	// Sweep removes at most limit entries whose expiry is at or before
	// nowEpoch (seconds), returning the number removed. Entries are never
	// removed before their own expiry.
	Sweep(ctx context.Context, nowEpoch int64, limit int) (int, error)
}
