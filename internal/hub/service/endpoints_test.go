package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEndpointLookup(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sync := &EndpointSyncService{Store: st}
	query := &EndpointQueryService{Store: st}

	_, err := sync.Sync(ctx, "billing", []EndpointSpec{
		{URLPattern: "/v1/invoices/{id}", HTTPMethod: "GET", PermissionKey: "invoice:read"},
		{URLPattern: "/v1/invoices", HTTPMethod: "POST", PermissionKey: "invoice:create"},
	})
	require.NoError(t, err)

	e, err := query.Lookup(ctx, "billing", "/v1/invoices/{id}", "GET")
	require.NoError(t, err)
	require.Equal(t, "billing", e.ServiceName)
	require.True(t, e.Active())

	// Method is part of the key.
	_, err = query.Lookup(ctx, "billing", "/v1/invoices/{id}", "DELETE")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = query.Lookup(ctx, "payments", "/v1/invoices/{id}", "GET")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEndpointListActiveExcludesSoftDeleted(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sync := &EndpointSyncService{Store: st}
	query := &EndpointQueryService{Store: st}

	_, err := sync.Sync(ctx, "billing", []EndpointSpec{
		{URLPattern: "/v1/invoices", HTTPMethod: "GET", PermissionKey: "invoice:list"},
		{URLPattern: "/v1/invoices", HTTPMethod: "POST", PermissionKey: "invoice:create"},
	})
	require.NoError(t, err)

	all, err := query.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	require.NoError(t, st.Endpoints().SoftDeleteEndpoint(ctx, all[0].ID, time.Now().UTC()))

	remaining, err := query.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)

	// A deleted endpoint no longer resolves.
	_, err = query.Lookup(ctx, all[0].ServiceName, all[0].URLPattern, all[0].HTTPMethod)
	require.ErrorIs(t, err, ErrNotFound)
}
