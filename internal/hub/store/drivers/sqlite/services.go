package sqlite

import (
	"context"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
)

type servicesRepo struct {
	db dbtx
}

func (r *servicesRepo) GetServiceByCode(ctx context.Context, code string) (domain.Service, error) {
	var (
		s         domain.Service
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, name, created_at FROM services WHERE code = ?`, code).
		Scan(&s.ID, &s.Code, &s.Name, &createdAt)
	if err != nil {
		return domain.Service{}, mapNotFound(err)
	}
	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	return s, nil
}

func (r *servicesRepo) CreateService(ctx context.Context, s domain.Service) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO services (id, code, name, created_at) VALUES (?, ?, ?, ?)`,
		s.ID, s.Code, s.Name, s.CreatedAt.Unix())
	return mapConstraint(err)
}
