package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
)

type usersRepo struct {
	db dbtx
}

const userCols = `id, tenant_id, organization_id, email, password_hash, status, mfa_secret, last_login_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u                  domain.User
		orgID, mfaSecret   sql.NullString
		lastLogin          sql.NullInt64
		createdAt, updated int64
	)
	err := row.Scan(&u.ID, &u.TenantID, &orgID, &u.Email, &u.PasswordHash, &u.Status,
		&mfaSecret, &lastLogin, &createdAt, &updated)
	if err != nil {
		return domain.User{}, err
	}
	u.OrganizationID = mapNullString(orgID)
	u.MFASecret = mapNullString(mfaSecret)
	u.LastLoginAt = mapNullTime(lastLogin)
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	u.UpdatedAt = time.Unix(updated, 0).UTC()
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.TenantID, mapStringNull(u.OrganizationID), u.Email, u.PasswordHash, u.Status,
		mapStringNull(u.MFASecret), mapTimeNull(u.LastLoginAt), u.CreatedAt.Unix(), u.UpdatedAt.Unix())
	return mapConstraint(err)
}

func (r *usersRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`,
		userID, roleID)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserRoleNames(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.name FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = ?
		 ORDER BY r.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (r *usersRepo) GetUserPermissionKeys(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT p.permission_key FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 JOIN user_roles ur ON ur.role_id = rp.role_id
		 WHERE ur.user_id = ?
		 ORDER BY p.permission_key`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, rows.Err()
}

func (r *usersRepo) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`,
		at.Unix(), at.Unix(), userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
