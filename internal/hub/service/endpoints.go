package service

import (
	"context"
	"errors"

	"github.com/accesshub/accesshub/internal/hub/domain"
	"github.com/accesshub/accesshub/internal/hub/store"
)

// EndpointQueryService serves the gateway's read side: resolving a request
// to its required permission and dumping the active endpoint registry.
type EndpointQueryService struct {
	Store store.Store
}

// Lookup resolves an incoming (service, pattern, method) tuple to its
// registered endpoint. Soft-deleted endpoints do not resolve.
func (s *EndpointQueryService) Lookup(ctx context.Context, serviceName, urlPattern, httpMethod string) (domain.PermissionEndpoint, error) {
	e, err := s.Store.Endpoints().GetEndpoint(ctx, domain.EndpointKey{
		ServiceName: serviceName,
		URLPattern:  urlPattern,
		HTTPMethod:  httpMethod,
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.PermissionEndpoint{}, ErrNotFound
	}
	return e, err
}

// ListActive returns every live endpoint mapping, for gateways that cache
// the whole registry locally.
func (s *EndpointQueryService) ListActive(ctx context.Context) ([]domain.PermissionEndpoint, error) {
	return s.Store.Endpoints().ListActiveEndpoints(ctx)
}
