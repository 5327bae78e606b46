package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
	"github.com/accesshub/accesshub/internal/hub/service"
	"github.com/accesshub/accesshub/internal/hub/store"
	"github.com/accesshub/accesshub/internal/hub/store/drivers/sqlite"
	"github.com/accesshub/accesshub/pkg/idx"
	"github.com/stretchr/testify/require"
)

func seedSyncService(t *testing.T, st store.Store, code string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	svc := domain.Service{ID: idx.New().String(), Code: code, Name: code, CreatedAt: now}
	require.NoError(t, st.Services().CreateService(ctx, svc))
	for _, name := range []string{domain.RoleAdmin, domain.RoleEditor, domain.RoleViewer} {
		require.NoError(t, st.Roles().CreateRole(ctx, domain.Role{
			ID: idx.New().String(), ServiceID: svc.ID, Name: name,
			Scope: domain.ScopeGlobal, Type: domain.RoleTypeSystem,
			CreatedAt: now, UpdatedAt: now,
		}))
	}
}

func TestSyncEndpointAppliesBatchServiceCode(t *testing.T) {
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	seedSyncService(t, st, "billing")
	h := &SyncHandler{SyncService: &service.EndpointSyncService{Store: st}}

	// The service code rides on the batch; declarations need not repeat it.
	rec := postJSON(t, h.HandleSync, map[string]any{
		"service_name": "billing-api",
		"service_code": "billing",
		"endpoints": []map[string]any{
			{"url_pattern": "/invoices", "http_method": "GET", "permission_key": "invoice:read"},
			{"url_pattern": "/invoices", "http_method": "POST", "permission_key": "invoice:create"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result service.SyncResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, 2, result.CreatedPermissions)
	require.Equal(t, 2, result.CreatedEndpoints)
	// read maps onto ADMIN+EDITOR+VIEWER, create onto ADMIN+EDITOR.
	require.Equal(t, 5, result.MappedRolePermissions)

	p, err := st.Permissions().GetPermissionByKey(context.Background(), "invoice:read")
	require.NoError(t, err)
	require.NotEmpty(t, p.ServiceID)
}
