package postgres

import (
	"context"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
)

type permissionsRepo struct {
	db dbtx
}

const permissionCols = `id, service_id, permission_key, resource, action, description, type, created_at, updated_at`

func scanPermission(row interface{ Scan(...any) error }) (domain.Permission, error) {
	var (
		p                  domain.Permission
		createdAt, updated int64
	)
	err := row.Scan(&p.ID, &p.ServiceID, &p.Key, &p.Resource, &p.Action, &p.Description, &p.Type, &createdAt, &updated)
	if err != nil {
		return domain.Permission{}, err
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	p.UpdatedAt = time.Unix(updated, 0).UTC()
	return p, nil
}

func (r *permissionsRepo) GetPermissionByID(ctx context.Context, id string) (domain.Permission, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+permissionCols+` FROM permissions WHERE id = $1`, id)
	p, err := scanPermission(row)
	if err != nil {
		return domain.Permission{}, mapNotFound(err)
	}
	return p, nil
}

func (r *permissionsRepo) GetPermissionByKey(ctx context.Context, key string) (domain.Permission, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+permissionCols+` FROM permissions WHERE permission_key = $1`, key)
	p, err := scanPermission(row)
	if err != nil {
		return domain.Permission{}, mapNotFound(err)
	}
	return p, nil
}

func (r *permissionsRepo) GetPermissionsByKeys(ctx context.Context, keys []string) ([]domain.Permission, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+permissionCols+` FROM permissions WHERE permission_key IN (`+placeholders(1, len(keys))+`)`,
		toAnySlice(keys)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Permission
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *permissionsRepo) CreatePermission(ctx context.Context, p domain.Permission) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO permissions (`+permissionCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.ServiceID, p.Key, p.Resource, p.Action, p.Description, p.Type,
		p.CreatedAt.Unix(), p.UpdatedAt.Unix())
	return mapConstraint(err)
}

func (r *permissionsRepo) UpdatePermissionDescription(ctx context.Context, id, description string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE permissions SET description = $1, updated_at = $2 WHERE id = $3`,
		description, time.Now().Unix(), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *permissionsRepo) DeletePermission(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
