package service

import (
	"context"
	"errors"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
	"github.com/accesshub/accesshub/internal/hub/store"
	"github.com/accesshub/accesshub/pkg/idx"
)

// PermissionService carries the admin-facing permission operations. SYSTEM
// permissions are immutable; every mutation checks the type first.
type PermissionService struct {
	Store store.Store
}

func (s *PermissionService) GetByKey(ctx context.Context, key string) (domain.Permission, error) {
	p, err := s.Store.Permissions().GetPermissionByKey(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Permission{}, ErrNotFound
	}
	return p, err
}

// Create registers a custom permission. Permission definitions are global
// resources, so every mutation requires a GLOBAL-scoped caller.
func (s *PermissionService) Create(ctx context.Context, caller domain.AccessContext, serviceCode, key, description string) (domain.Permission, error) {
	if err := authorizeTenantWrite(caller, ""); err != nil {
		return domain.Permission{}, err
	}

	resource, action, err := domain.ParsePermissionKey(key)
	if err != nil {
		return domain.Permission{}, ErrInvalidState
	}

	serviceID := ""
	if serviceCode != "" {
		svc, err := s.Store.Services().GetServiceByCode(ctx, serviceCode)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Permission{}, ErrNotFound
			}
			return domain.Permission{}, err
		}
		serviceID = svc.ID
	}

	now := time.Now().UTC()
	p := domain.Permission{
		ID:          string(idx.New()),
		ServiceID:   serviceID,
		Key:         key,
		Resource:    resource,
		Action:      action,
		Description: description,
		Type:        domain.PermissionTypeCustom,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Permissions().CreatePermission(ctx, p); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Permission{}, ErrDuplicate
		}
		return domain.Permission{}, err
	}
	return p, nil
}

func (s *PermissionService) UpdateDescription(ctx context.Context, caller domain.AccessContext, id, description string) error {
	if err := authorizeTenantWrite(caller, ""); err != nil {
		return err
	}

	p, err := s.Store.Permissions().GetPermissionByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if p.IsSystem() {
		return ErrInvalidState
	}
	return s.Store.Permissions().UpdatePermissionDescription(ctx, id, description)
}

func (s *PermissionService) Delete(ctx context.Context, caller domain.AccessContext, id string) error {
	if err := authorizeTenantWrite(caller, ""); err != nil {
		return err
	}

	p, err := s.Store.Permissions().GetPermissionByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if p.IsSystem() {
		return ErrInvalidState
	}
	return s.Store.Permissions().DeletePermission(ctx, id)
}
