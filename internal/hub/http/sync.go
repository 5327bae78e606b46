package http

import (
	"encoding/json"
	"net/http"

	"github.com/accesshub/accesshub/internal/hub/obs"
	"github.com/accesshub/accesshub/internal/hub/service"
	"github.com/accesshub/accesshub/pkg/httpx"
)

// SyncHandler receives a service's endpoint declarations and reconciles them
// into the registry.
type SyncHandler struct {
	SyncService *service.EndpointSyncService
}

type syncRequest struct {
	ServiceName string             `json:"service_name"`
	ServiceCode string             `json:"service_code,omitempty"`
	Endpoints   []syncEndpointSpec `json:"endpoints"`
}

type syncEndpointSpec struct {
	URLPattern    string `json:"url_pattern"`
	HTTPMethod    string `json:"http_method"`
	PermissionKey string `json:"permission_key"`
	Description   string `json:"description,omitempty"`
	IsPublic      bool   `json:"is_public,omitempty"`
	ServiceCode   string `json:"service_code,omitempty"`
}

func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}
	if req.ServiceName == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "service_name is required")
		return
	}

	specs := make([]service.EndpointSpec, len(req.Endpoints))
	for i, e := range req.Endpoints {
		// The batch-level service code applies to every endpoint unless a
		// declaration overrides it.
		code := e.ServiceCode
		if code == "" {
			code = req.ServiceCode
		}
		specs[i] = service.EndpointSpec{
			URLPattern:    e.URLPattern,
			HTTPMethod:    e.HTTPMethod,
			PermissionKey: e.PermissionKey,
			Description:   e.Description,
			IsPublic:      e.IsPublic,
			ServiceCode:   code,
		}
	}

	result, err := h.SyncService.Sync(r.Context(), req.ServiceName, specs)
	if err != nil {
		obs.SyncRun("error")
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	obs.SyncRun("ok")
	httpx.WriteJSON(w, http.StatusOK, result)
}
