package service

import (
	"context"
	"testing"

	"github.com/accesshub/accesshub/internal/hub/domain"
	"github.com/accesshub/accesshub/internal/hub/store"
	"github.com/accesshub/accesshub/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestSyncCreatesAndMapsBatch(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedService(t, st, "billing", "Billing Service")

	svc := &EndpointSyncService{Store: st}

	specs := []EndpointSpec{
		{URLPattern: "/invoices", HTTPMethod: "GET", PermissionKey: "invoice:read", ServiceCode: "billing"},
		{URLPattern: "/invoices", HTTPMethod: "POST", PermissionKey: "invoice:create", ServiceCode: "billing"},
		{URLPattern: "/invoices/{id}", HTTPMethod: "DELETE", PermissionKey: "invoice:delete", ServiceCode: "billing"},
		{URLPattern: "/broken", HTTPMethod: "GET", PermissionKey: "no-colon-here"},
	}

	result, err := svc.Sync(ctx, "billing-api", specs)
	require.NoError(t, err)

	require.Equal(t, 4, result.TotalEndpoints)
	require.Equal(t, 3, result.CreatedPermissions)
	require.Equal(t, 3, result.CreatedEndpoints)
	require.Equal(t, 1, result.SkippedEndpoints)
	// read maps to ADMIN+EDITOR+VIEWER, create to ADMIN+EDITOR, delete to ADMIN.
	require.Equal(t, 6, result.MappedRolePermissions)

	// The permissions actually landed with parsed resource/action.
	p, err := st.Permissions().GetPermissionByKey(ctx, "invoice:read")
	require.NoError(t, err)
	require.Equal(t, "invoice", p.Resource)
	require.Equal(t, "read", p.Action)
	require.Equal(t, domain.PermissionTypeCustom, p.Type)
	require.NotEmpty(t, p.ServiceID)

	// And the endpoints resolve through the lookup path to their own
	// permission.
	created, err := st.Permissions().GetPermissionByKey(ctx, "invoice:create")
	require.NoError(t, err)
	e, err := st.Endpoints().GetEndpoint(ctx, domain.EndpointKey{
		ServiceName: "billing-api", URLPattern: "/invoices", HTTPMethod: "POST",
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, e.PermissionID)
}

func TestSyncIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedService(t, st, "billing", "Billing Service")

	svc := &EndpointSyncService{Store: st}
	specs := []EndpointSpec{
		{URLPattern: "/invoices", HTTPMethod: "GET", PermissionKey: "invoice:read", ServiceCode: "billing"},
		{URLPattern: "/invoices", HTTPMethod: "POST", PermissionKey: "invoice:create", ServiceCode: "billing"},
	}

	first, err := svc.Sync(ctx, "billing-api", specs)
	require.NoError(t, err)
	require.Equal(t, 2, first.CreatedEndpoints)

	second, err := svc.Sync(ctx, "billing-api", specs)
	require.NoError(t, err)
	require.Equal(t, 2, second.TotalEndpoints)
	require.Zero(t, second.CreatedPermissions)
	require.Zero(t, second.CreatedEndpoints)
	require.Zero(t, second.MappedRolePermissions)
	require.Equal(t, 2, second.SkippedEndpoints)
}

func TestSyncUnknownServiceCodeStillCreatesPermission(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	svc := &EndpointSyncService{Store: st}
	result, err := svc.Sync(ctx, "orphan-api", []EndpointSpec{
		{URLPattern: "/things", HTTPMethod: "GET", PermissionKey: "thing:read", ServiceCode: "not-registered"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.CreatedPermissions)
	require.Equal(t, 1, result.CreatedEndpoints)
	require.Zero(t, result.MappedRolePermissions)

	p, err := st.Permissions().GetPermissionByKey(ctx, "thing:read")
	require.NoError(t, err)
	require.Empty(t, p.ServiceID)
}

func TestSyncDoesNotResurrectSoftDeletedEndpoints(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedService(t, st, "billing", "Billing Service")

	svc := &EndpointSyncService{Store: st}
	specs := []EndpointSpec{
		{URLPattern: "/invoices", HTTPMethod: "GET", PermissionKey: "invoice:read", ServiceCode: "billing"},
	}

	_, err := svc.Sync(ctx, "billing-api", specs)
	require.NoError(t, err)

	e, err := st.Endpoints().GetEndpoint(ctx, domain.EndpointKey{
		ServiceName: "billing-api", URLPattern: "/invoices", HTTPMethod: "GET",
	})
	require.NoError(t, err)
	require.NoError(t, st.Endpoints().SoftDeleteEndpoint(ctx, e.ID, e.CreatedAt.Add(1)))

	// A startup re-sync must not undo the deliberate removal.
	result, err := svc.Sync(ctx, "billing-api", specs)
	require.NoError(t, err)
	require.Zero(t, result.CreatedEndpoints)
	require.Equal(t, 1, result.SkippedEndpoints)

	_, err = st.Endpoints().GetEndpoint(ctx, domain.EndpointKey{
		ServiceName: "billing-api", URLPattern: "/invoices", HTTPMethod: "GET",
	})
	require.Error(t, err)
}

func TestDefaultRolesForAction(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"ADMIN", "EDITOR", "VIEWER"}, defaultRolesForAction("read"))
	require.Equal(t, []string{"ADMIN", "EDITOR", "VIEWER"}, defaultRolesForAction("list"))
	require.Equal(t, []string{"ADMIN", "EDITOR"}, defaultRolesForAction("create"))
	require.Equal(t, []string{"ADMIN", "EDITOR"}, defaultRolesForAction("update"))
	require.Equal(t, []string{"ADMIN"}, defaultRolesForAction("delete"))
	require.Equal(t, []string{"ADMIN"}, defaultRolesForAction("unheard-of"))
}

// contendedStore injects a rival insert right before each create so the
// service sees the unique violation a concurrent sync would produce.
type contendedStore struct {
	store.Store
}

func (s *contendedStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(&contendedTx{baseTx: tx})
	})
}

// baseTx lets contendedTx embed store.Tx without the embedded field name
// (Tx) shadowing the promoted Tx method from store.Store.
type baseTx = store.Tx

type contendedTx struct {
	baseTx
}

func (t *contendedTx) Permissions() store.Permissions {
	return &contendedPermissions{Permissions: t.baseTx.Permissions()}
}

func (t *contendedTx) Endpoints() store.Endpoints {
	return &contendedEndpoints{Endpoints: t.baseTx.Endpoints()}
}

type contendedPermissions struct {
	store.Permissions
}

func (p *contendedPermissions) CreatePermission(ctx context.Context, perm domain.Permission) error {
	rival := perm
	rival.ID = idx.New().String()
	if err := p.Permissions.CreatePermission(ctx, rival); err != nil {
		return err
	}
	return p.Permissions.CreatePermission(ctx, perm)
}

type contendedEndpoints struct {
	store.Endpoints
}

func (e *contendedEndpoints) CreateEndpoint(ctx context.Context, ep domain.PermissionEndpoint) error {
	rival := ep
	rival.ID = idx.New().String()
	if err := e.Endpoints.CreateEndpoint(ctx, rival); err != nil {
		return err
	}
	return e.Endpoints.CreateEndpoint(ctx, ep)
}

func TestSyncSurvivesDuplicateCreateRace(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	svc := &EndpointSyncService{Store: &contendedStore{Store: st}}
	specs := []EndpointSpec{
		{URLPattern: "/reports", HTTPMethod: "GET", PermissionKey: "report:read"},
	}

	result, err := svc.Sync(ctx, "report-api", specs)
	require.NoError(t, err)
	require.Equal(t, 1, result.TotalEndpoints)
	require.Zero(t, result.CreatedPermissions)
	require.Zero(t, result.CreatedEndpoints)
	require.Equal(t, 1, result.SkippedEndpoints)

	// The rival's rows won and the batch still reconciles onto them.
	p, err := st.Permissions().GetPermissionByKey(ctx, "report:read")
	require.NoError(t, err)
	e, err := st.Endpoints().GetEndpoint(ctx, domain.EndpointKey{
		ServiceName: "report-api", URLPattern: "/reports", HTTPMethod: "GET",
	})
	require.NoError(t, err)
	require.Equal(t, p.ID, e.PermissionID)

	// A later uncontended run converges to a clean no-op.
	again, err := (&EndpointSyncService{Store: st}).Sync(ctx, "report-api", specs)
	require.NoError(t, err)
	require.Zero(t, again.CreatedPermissions)
	require.Zero(t, again.CreatedEndpoints)
}
