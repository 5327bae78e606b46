package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
	"github.com/accesshub/accesshub/internal/hub/store"
	"github.com/accesshub/accesshub/pkg/idx"
	"github.com/accesshub/accesshub/pkg/slogx"
)

// EndpointSpec is one endpoint declaration in a service's sync batch.
type EndpointSpec struct {
	URLPattern    string
	HTTPMethod    string
	PermissionKey string
	Description   string
	IsPublic      bool
	ServiceCode   string
}

// SyncResult summarises one reconciliation run.
type SyncResult struct {
	TotalEndpoints        int `json:"total_endpoints"`
	CreatedPermissions    int `json:"created_permissions"`
	CreatedEndpoints      int `json:"created_endpoints"`
	SkippedEndpoints      int `json:"skipped_endpoints"`
	MappedRolePermissions int `json:"mapped_role_permissions"`
}

// EndpointSyncService reconciles a service's declared endpoints against the
// registry. Repeated runs with the same batch converge to no-ops.
type EndpointSyncService struct {
	Store store.Store
}

// Sync reconciles one batch atomically. Declarations that already exist are
// skipped rather than updated, and soft-deleted endpoints are left deleted so
// a deliberate removal is not undone by the next startup sync.
func (s *EndpointSyncService) Sync(ctx context.Context, serviceName string, specs []EndpointSpec) (SyncResult, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	result := SyncResult{TotalEndpoints: len(specs)}
	if len(specs) == 0 {
		return result, nil
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Endpoint declarations without a valid permission key cannot be
		// registered; count them as skipped and keep the batch going.
		valid := make([]EndpointSpec, 0, len(specs))
		keySet := make(map[string]struct{})
		for _, spec := range specs {
			if _, _, err := domain.ParsePermissionKey(spec.PermissionKey); err != nil {
				l.Warn("sync: skipping endpoint with invalid permission key",
					"service", serviceName,
					"url_pattern", spec.URLPattern,
					"permission_key", spec.PermissionKey)
				result.SkippedEndpoints++
				continue
			}
			valid = append(valid, spec)
			keySet[spec.PermissionKey] = struct{}{}
		}
		if len(valid) == 0 {
			return nil
		}

		keys := make([]string, 0, len(keySet))
		for k := range keySet {
			keys = append(keys, k)
		}

		existing, err := tx.Permissions().GetPermissionsByKeys(ctx, keys)
		if err != nil {
			return err
		}
		permByKey := make(map[string]domain.Permission, len(existing))
		for _, p := range existing {
			permByKey[p.Key] = p
		}

		// Create only the missing subset, resolving the owning service as we
		// go. A spec referencing an unregistered service code still gets its
		// permission; it just has no default roles to map onto.
		serviceIDByCode := make(map[string]string)
		var created []domain.Permission
		for _, spec := range valid {
			if _, ok := permByKey[spec.PermissionKey]; ok {
				continue
			}
			serviceID, err := s.resolveService(ctx, tx, serviceIDByCode, spec.ServiceCode, l)
			if err != nil {
				return err
			}

			resource, action, _ := domain.ParsePermissionKey(spec.PermissionKey)
			p := domain.Permission{
				ID:          string(idx.New()),
				ServiceID:   serviceID,
				Key:         spec.PermissionKey,
				Resource:    resource,
				Action:      action,
				Description: spec.Description,
				Type:        domain.PermissionTypeCustom,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.Permissions().CreatePermission(ctx, p); err != nil {
				if !errors.Is(err, store.ErrAlreadyExists) {
					return err
				}
				// Lost a concurrent create race; adopt the winner's row and
				// leave role mapping to whoever created it.
				p, err = tx.Permissions().GetPermissionByKey(ctx, p.Key)
				if err != nil {
					return err
				}
				permByKey[p.Key] = p
				continue
			}
			permByKey[p.Key] = p
			created = append(created, p)
			result.CreatedPermissions++
		}

		// Bulk-fetch existing endpoints (soft-deleted included) and create
		// the missing subset.
		patternSet := make(map[string]struct{})
		for _, spec := range valid {
			patternSet[spec.URLPattern] = struct{}{}
		}
		patterns := make([]string, 0, len(patternSet))
		for p := range patternSet {
			patterns = append(patterns, p)
		}
		existingEndpoints, err := tx.Endpoints().GetEndpointsByKeys(ctx, serviceName, patterns)
		if err != nil {
			return err
		}
		haveEndpoint := make(map[domain.EndpointKey]struct{}, len(existingEndpoints))
		for _, e := range existingEndpoints {
			haveEndpoint[e.Key()] = struct{}{}
		}

		for _, spec := range valid {
			key := domain.EndpointKey{
				ServiceName: serviceName,
				URLPattern:  spec.URLPattern,
				HTTPMethod:  spec.HTTPMethod,
			}
			if _, ok := haveEndpoint[key]; ok {
				result.SkippedEndpoints++
				continue
			}
			e := domain.PermissionEndpoint{
				ID:           string(idx.New()),
				ServiceName:  serviceName,
				URLPattern:   spec.URLPattern,
				HTTPMethod:   spec.HTTPMethod,
				PermissionID: permByKey[spec.PermissionKey].ID,
				Description:  spec.Description,
				IsPublic:     spec.IsPublic,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.Endpoints().CreateEndpoint(ctx, e); err != nil {
				if !errors.Is(err, store.ErrAlreadyExists) {
					return err
				}
				// A concurrent sync registered it first.
				haveEndpoint[key] = struct{}{}
				result.SkippedEndpoints++
				continue
			}
			haveEndpoint[key] = struct{}{}
			result.CreatedEndpoints++
		}

		// Newly created permissions get granted to the owning service's
		// default roles, by action class.
		for _, p := range created {
			if p.ServiceID == "" {
				continue
			}
			mapped, err := s.mapToDefaultRoles(ctx, tx, p, now, l)
			if err != nil {
				return err
			}
			result.MappedRolePermissions += mapped
		}

		return nil
	})
	if err != nil {
		return SyncResult{}, err
	}

	l.Info("endpoint sync complete",
		"service", serviceName,
		"total", result.TotalEndpoints,
		"created_permissions", result.CreatedPermissions,
		"created_endpoints", result.CreatedEndpoints,
		"skipped", result.SkippedEndpoints,
		"mapped_role_permissions", result.MappedRolePermissions)

	return result, nil
}

func (s *EndpointSyncService) resolveService(ctx context.Context, tx store.Tx, cache map[string]string, code string, l *slog.Logger) (string, error) {
	if code == "" {
		return "", nil
	}
	if id, ok := cache[code]; ok {
		return id, nil
	}
	svc, err := tx.Services().GetServiceByCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		l.Warn("sync: unknown service code, permission created without service link", "service_code", code)
		cache[code] = ""
		return "", nil
	}
	if err != nil {
		return "", err
	}
	cache[code] = svc.ID
	return svc.ID, nil
}

// defaultRolesForAction classifies a permission action into the service
// default roles that should automatically receive it.
func defaultRolesForAction(action string) []string {
	switch action {
	case "read", "list", "search", "get":
		return []string{domain.RoleAdmin, domain.RoleEditor, domain.RoleViewer}
	case "create", "update", "write", "edit":
		return []string{domain.RoleAdmin, domain.RoleEditor}
	default:
		return []string{domain.RoleAdmin}
	}
}

func (s *EndpointSyncService) mapToDefaultRoles(ctx context.Context, tx store.Tx, p domain.Permission, now time.Time, l *slog.Logger) (int, error) {
	mapped := 0
	for _, name := range defaultRolesForAction(p.Action) {
		role, err := tx.Roles().GetServiceRoleByName(ctx, p.ServiceID, name)
		if errors.Is(err, store.ErrNotFound) {
			l.Warn("sync: service default role missing, skipping auto-grant",
				"service_id", p.ServiceID, "role", name, "permission_key", p.Key)
			continue
		}
		if err != nil {
			return 0, err
		}

		granted, err := tx.RolePermissions().GetGrantedPermissionIDs(ctx, role.ID, []string{p.ID})
		if err != nil {
			return 0, err
		}
		if len(granted) > 0 {
			continue
		}

		err = tx.RolePermissions().CreateRolePermission(ctx, domain.RolePermission{
			RoleID:       role.ID,
			PermissionID: p.ID,
			CreatedAt:    now,
		})
		if errors.Is(err, store.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return 0, err
		}
		mapped++
	}
	return mapped, nil
}
