package sqlite

import (
	"context"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
)

type tenantsRepo struct {
	db dbtx
}

func (r *tenantsRepo) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	var (
		t         domain.Tenant
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM tenants WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &createdAt)
	if err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	return t, nil
}

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, created_at) VALUES (?, ?, ?)`,
		t.ID, t.Name, t.CreatedAt.Unix())
	return mapConstraint(err)
}

type organizationsRepo struct {
	db dbtx
}

func (r *organizationsRepo) GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error) {
	var (
		o         domain.Organization
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, created_at FROM organizations WHERE id = ?`, id).
		Scan(&o.ID, &o.TenantID, &o.Name, &createdAt)
	if err != nil {
		return domain.Organization{}, mapNotFound(err)
	}
	o.CreatedAt = time.Unix(createdAt, 0).UTC()
	return o, nil
}

func (r *organizationsRepo) CreateOrganization(ctx context.Context, o domain.Organization) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO organizations (id, tenant_id, name, created_at) VALUES (?, ?, ?, ?)`,
		o.ID, o.TenantID, o.Name, o.CreatedAt.Unix())
	return mapConstraint(err)
}
