package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
)

type endpointsRepo struct {
	db dbtx
}

const endpointCols = `id, service_name, url_pattern, http_method, permission_id, description, is_public, deleted_at, created_at, updated_at`

func scanEndpoint(row interface{ Scan(...any) error }) (domain.PermissionEndpoint, error) {
	var (
		e                  domain.PermissionEndpoint
		isPublic           int
		deletedAt          sql.NullInt64
		createdAt, updated int64
	)
	err := row.Scan(&e.ID, &e.ServiceName, &e.URLPattern, &e.HTTPMethod, &e.PermissionID,
		&e.Description, &isPublic, &deletedAt, &createdAt, &updated)
	if err != nil {
		return domain.PermissionEndpoint{}, err
	}
	e.IsPublic = isPublic != 0
	e.DeletedAt = mapNullTime(deletedAt)
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	e.UpdatedAt = time.Unix(updated, 0).UTC()
	return e, nil
}

func (r *endpointsRepo) GetEndpoint(ctx context.Context, key domain.EndpointKey) (domain.PermissionEndpoint, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+endpointCols+` FROM permission_endpoints
		 WHERE service_name = ? AND url_pattern = ? AND http_method = ? AND deleted_at IS NULL`,
		key.ServiceName, key.URLPattern, key.HTTPMethod)
	e, err := scanEndpoint(row)
	if err != nil {
		return domain.PermissionEndpoint{}, mapNotFound(err)
	}
	return e, nil
}

func (r *endpointsRepo) GetEndpointsByKeys(ctx context.Context, serviceName string, urlPatterns []string) ([]domain.PermissionEndpoint, error) {
	if len(urlPatterns) == 0 {
		return nil, nil
	}
	args := append([]any{serviceName}, toAnySlice(urlPatterns)...)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+endpointCols+` FROM permission_endpoints
		 WHERE service_name = ? AND url_pattern IN (`+placeholders(len(urlPatterns))+`)`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PermissionEndpoint
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *endpointsRepo) CreateEndpoint(ctx context.Context, e domain.PermissionEndpoint) error {
	isPublic := 0
	if e.IsPublic {
		isPublic = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO permission_endpoints (`+endpointCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ServiceName, e.URLPattern, e.HTTPMethod, e.PermissionID, e.Description,
		isPublic, mapTimeNull(e.DeletedAt), e.CreatedAt.Unix(), e.UpdatedAt.Unix())
	return mapConstraint(err)
}

func (r *endpointsRepo) ListActiveEndpoints(ctx context.Context) ([]domain.PermissionEndpoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+endpointCols+` FROM permission_endpoints
		 WHERE deleted_at IS NULL
		 ORDER BY service_name, url_pattern, http_method`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PermissionEndpoint
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *endpointsRepo) SoftDeleteEndpoint(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE permission_endpoints SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		at.Unix(), at.Unix(), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
