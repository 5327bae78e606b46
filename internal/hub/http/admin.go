package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/accesshub/accesshub/internal/hub/domain"
	"github.com/accesshub/accesshub/internal/hub/service"
	"github.com/accesshub/accesshub/pkg/httpx"
)

// PermissionHandler serves the admin permission operations.
type PermissionHandler struct {
	PermissionService *service.PermissionService
	RoleService       *service.RoleService
}

// callerAccess resolves the verified claims on an authenticated admin
// request into the scope evaluator's input. The services apply the actual
// lattice check against the mutation's target.
func callerAccess(r *http.Request, roles *service.RoleService) (domain.AccessContext, error) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		return domain.AccessContext{}, service.ErrUnauthorized
	}
	return roles.BuildAccessContext(r.Context(), claims)
}

type createPermissionRequest struct {
	Key         string `json:"key"`
	ServiceCode string `json:"service_code,omitempty"`
	Description string `json:"description,omitempty"`
}

type updatePermissionRequest struct {
	Description string `json:"description"`
}

type permissionResponse struct {
	ID          string `json:"id"`
	ServiceID   string `json:"service_id,omitempty"`
	Key         string `json:"key"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
}

func newPermissionResponse(p domain.Permission) permissionResponse {
	return permissionResponse{
		ID:          p.ID,
		ServiceID:   p.ServiceID,
		Key:         p.Key,
		Resource:    p.Resource,
		Action:      p.Action,
		Description: p.Description,
		Type:        string(p.Type),
	}
}

func (h *PermissionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "key is required")
		return
	}

	caller, err := callerAccess(r, h.RoleService)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	p, err := h.PermissionService.Create(r.Context(), caller, req.ServiceCode, req.Key, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, newPermissionResponse(p))
}

func (h *PermissionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.PermissionService.GetByKey(r.Context(), r.PathValue("key"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newPermissionResponse(p))
}

func (h *PermissionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updatePermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	caller, err := callerAccess(r, h.RoleService)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.PermissionService.UpdateDescription(r.Context(), caller, r.PathValue("id"), req.Description); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PermissionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, err := callerAccess(r, h.RoleService)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.PermissionService.Delete(r.Context(), caller, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RoleHandler serves the admin role operations.
type RoleHandler struct {
	RoleService *service.RoleService
}

type createRoleRequest struct {
	TenantID    string `json:"tenant_id,omitempty"`
	Name        string `json:"name"`
	Scope       string `json:"scope"`
	Description string `json:"description,omitempty"`
}

type grantRequest struct {
	PermissionID string `json:"permission_id"`
}

type roleResponse struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id,omitempty"`
	Name        string `json:"name"`
	Scope       string `json:"scope"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

func (h *RoleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	scope := domain.Scope(req.Scope)
	if !scope.Valid() {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown scope")
		return
	}

	caller, err := callerAccess(r, h.RoleService)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	role, err := h.RoleService.Create(r.Context(), caller, req.TenantID, req.Name, scope, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, roleResponse{
		ID:          role.ID,
		TenantID:    role.TenantID,
		Name:        role.Name,
		Scope:       string(role.Scope),
		Type:        string(role.Type),
		Description: role.Description,
	})
}

func (h *RoleHandler) HandleGrant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PermissionID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "permission_id is required")
		return
	}

	caller, err := callerAccess(r, h.RoleService)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.RoleService.Grant(r.Context(), caller, r.PathValue("id"), req.PermissionID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoleHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	caller, err := callerAccess(r, h.RoleService)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.RoleService.Revoke(r.Context(), caller, r.PathValue("id"), r.PathValue("pid")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "")
	case errors.Is(err, service.ErrDuplicate):
		httpx.WriteError(w, http.StatusConflict, "duplicate", "")
	case errors.Is(err, service.ErrInvalidState):
		httpx.WriteError(w, http.StatusUnprocessableEntity, "invalid_state", "")
	case errors.Is(err, service.ErrUnauthorized):
		// Authenticated but out of scope for the target.
		httpx.WriteError(w, http.StatusForbidden, "insufficient_scope", "")
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
	}
}
