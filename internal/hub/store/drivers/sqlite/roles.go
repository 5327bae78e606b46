package sqlite

import (
	"context"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
)

type rolesRepo struct {
	db dbtx
}

const roleCols = `id, tenant_id, service_id, name, scope, type, description, created_at, updated_at`

func scanRole(row interface{ Scan(...any) error }) (domain.Role, error) {
	var (
		r                  domain.Role
		createdAt, updated int64
	)
	err := row.Scan(&r.ID, &r.TenantID, &r.ServiceID, &r.Name, &r.Scope, &r.Type, &r.Description, &createdAt, &updated)
	if err != nil {
		return domain.Role{}, err
	}
	r.CreatedAt = time.Unix(createdAt, 0).UTC()
	r.UpdatedAt = time.Unix(updated, 0).UTC()
	return r, nil
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id string) (domain.Role, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+roleCols+` FROM roles WHERE id = ?`, id)
	role, err := scanRole(row)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func (r *rolesRepo) GetRolesByNames(ctx context.Context, names []string) ([]domain.Role, error) {
	if len(names) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+roleCols+` FROM roles WHERE name IN (`+placeholders(len(names))+`)`,
		toAnySlice(names)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

func (r *rolesRepo) GetServiceRoleByName(ctx context.Context, serviceID, name string) (domain.Role, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+roleCols+` FROM roles WHERE service_id = ? AND name = ?`, serviceID, name)
	role, err := scanRole(row)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO roles (`+roleCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		role.ID, role.TenantID, role.ServiceID, role.Name, role.Scope, role.Type, role.Description,
		role.CreatedAt.Unix(), role.UpdatedAt.Unix())
	return mapConstraint(err)
}

type rolePermissionsRepo struct {
	db dbtx
}

func (r *rolePermissionsRepo) GetGrantedPermissionIDs(ctx context.Context, roleID string, permissionIDs []string) ([]string, error) {
	if len(permissionIDs) == 0 {
		return nil, nil
	}
	args := append([]any{roleID}, toAnySlice(permissionIDs)...)
	rows, err := r.db.QueryContext(ctx,
		`SELECT permission_id FROM role_permissions
		 WHERE role_id = ? AND permission_id IN (`+placeholders(len(permissionIDs))+`)`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *rolePermissionsRepo) CreateRolePermission(ctx context.Context, rp domain.RolePermission) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO role_permissions (role_id, permission_id, created_at) VALUES (?, ?, ?)`,
		rp.RoleID, rp.PermissionID, rp.CreatedAt.Unix())
	return mapConstraint(err)
}

func (r *rolePermissionsRepo) DeleteRolePermission(ctx context.Context, roleID, permissionID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM role_permissions WHERE role_id = ? AND permission_id = ?`,
		roleID, permissionID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
