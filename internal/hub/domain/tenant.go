package domain

import "time"

// Tenant and Organization are read-only collaborator shapes consumed for
// claim composition: the hub resolves ids to display names at issuance.

type Tenant struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type Organization struct {
	ID        string
	TenantID  string
	Name      string
	CreatedAt time.Time
}

// Service is a registered client service. Sync requests referencing a
// serviceCode resolve through this record to find the service's default
// roles for auto-mapping.
type Service struct {
	ID        string
	Code      string // unique, e.g. "orders"
	Name      string
	CreatedAt time.Time
}
