package domain

import "time"

// PermissionEndpoint maps an HTTP endpoint owned by a client service to the
// permission required to call it. The natural key is
// (ServiceName, URLPattern, HTTPMethod). The permission is referenced by
// bare id; exact pattern-matching semantics are the gateway's concern.
type PermissionEndpoint struct {
	ID           string
	ServiceName  string
	URLPattern   string // may contain path-variable or wildcard segments
	HTTPMethod   string
	PermissionID string
	Description  string
	IsPublic     bool // public endpoints bypass authorization entirely
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Active reports whether the endpoint has not been soft-deleted.
func (e PermissionEndpoint) Active() bool { return e.DeletedAt == nil }

// EndpointKey is the natural-key tuple used for bulk reconciliation lookups.
type EndpointKey struct {
	ServiceName string
	URLPattern  string
	HTTPMethod  string
}

// Key returns the endpoint's natural-key tuple.
func (e PermissionEndpoint) Key() EndpointKey {
	return EndpointKey{
		ServiceName: e.ServiceName,
		URLPattern:  e.URLPattern,
		HTTPMethod:  e.HTTPMethod,
	}
}
