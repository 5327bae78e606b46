package domain

// Scope is the breadth of a role's authority. The three levels form a total
// order: GLOBAL > TENANT > ORGANIZATION.
type Scope string

const (
	ScopeGlobal       Scope = "GLOBAL"
	ScopeTenant       Scope = "TENANT"
	ScopeOrganization Scope = "ORGANIZATION"
)

// rank maps a scope onto the total order. Unknown scopes rank below
// everything so a malformed role never widens access.
func (s Scope) rank() int {
	switch s {
	case ScopeGlobal:
		return 3
	case ScopeTenant:
		return 2
	case ScopeOrganization:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the three defined scopes.
func (s Scope) Valid() bool { return s.rank() > 0 }

// AccessContext is the caller's resolved identity for scope evaluation:
// claims plus the scopes of the roles those claims name. Evaluation is pure,
// no I/O happens here.
type AccessContext struct {
	UserID         string
	TenantID       string
	OrganizationID string
	RoleScopes     []Scope
}

// CurrentScope returns the maximum scope among the caller's roles, or the
// zero Scope when the caller has none.
func (a AccessContext) CurrentScope() Scope {
	var best Scope
	for _, s := range a.RoleScopes {
		if s.rank() > best.rank() {
			best = s
		}
	}
	return best
}

// CanAccessGlobal is true iff the caller holds a GLOBAL-scoped role.
func (a AccessContext) CanAccessGlobal() bool {
	return a.CurrentScope() == ScopeGlobal
}

// CanAccessTenant is true iff the caller is GLOBAL, or belongs to the target
// tenant. Organization-scoped callers may read within their own tenant.
func (a AccessContext) CanAccessTenant(targetTenantID string) bool {
	switch a.CurrentScope() {
	case ScopeGlobal:
		return true
	case ScopeTenant, ScopeOrganization:
		return a.TenantID != "" && a.TenantID == targetTenantID
	default:
		return false
	}
}

// CanAccessOrganization is true iff the caller is GLOBAL; or TENANT within
// the target's tenant (tenant admins reach every org in their tenant); or
// ORGANIZATION and it is the caller's own organization.
func (a AccessContext) CanAccessOrganization(targetOrgID, targetTenantID string) bool {
	switch a.CurrentScope() {
	case ScopeGlobal:
		return true
	case ScopeTenant:
		return a.TenantID != "" && a.TenantID == targetTenantID
	case ScopeOrganization:
		return a.OrganizationID != "" && a.OrganizationID == targetOrgID
	default:
		return false
	}
}
