package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
	"github.com/accesshub/accesshub/internal/hub/service"
	"github.com/accesshub/accesshub/pkg/httpx"
)

// EndpointQueryHandler serves the gateway read side.
type EndpointQueryHandler struct {
	QueryService *service.EndpointQueryService
}

type endpointResponse struct {
	ID           string    `json:"id"`
	ServiceName  string    `json:"service_name"`
	URLPattern   string    `json:"url_pattern"`
	HTTPMethod   string    `json:"http_method"`
	PermissionID string    `json:"permission_id"`
	Description  string    `json:"description,omitempty"`
	IsPublic     bool      `json:"is_public"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newEndpointResponse(e domain.PermissionEndpoint) endpointResponse {
	return endpointResponse{
		ID:           e.ID,
		ServiceName:  e.ServiceName,
		URLPattern:   e.URLPattern,
		HTTPMethod:   e.HTTPMethod,
		PermissionID: e.PermissionID,
		Description:  e.Description,
		IsPublic:     e.IsPublic,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func (h *EndpointQueryHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	serviceName := q.Get("service")
	urlPattern := q.Get("pattern")
	httpMethod := q.Get("method")
	if serviceName == "" || urlPattern == "" || httpMethod == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "service, pattern, and method are required")
		return
	}

	e, err := h.QueryService.Lookup(r.Context(), serviceName, urlPattern, httpMethod)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newEndpointResponse(e))
}

func (h *EndpointQueryHandler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	endpoints, err := h.QueryService.ListActive(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	out := make([]endpointResponse, len(endpoints))
	for i, e := range endpoints {
		out[i] = newEndpointResponse(e)
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"endpoints": out})
}
