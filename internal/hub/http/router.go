package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/accesshub/accesshub/internal/hub/obs"
	"github.com/accesshub/accesshub/internal/hub/service"
	"github.com/accesshub/accesshub/internal/hub/store"
	"github.com/accesshub/accesshub/pkg/httpx"
	"github.com/accesshub/accesshub/pkg/jwtx"
	"github.com/accesshub/accesshub/pkg/slogx"
)

// Permission keys guarding the admin surface.
const (
	PermEndpointSync     = "endpoint:sync"
	PermPermissionManage = "permission:manage"
	PermRoleManage       = "role:manage"
	PermEndpointRead     = "endpoint:read"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys      *jwtx.KeySet
	verifier  jwtx.Verifier
	issuer    string
	version   string
	startTime time.Time
	logger    *slog.Logger

	store             store.Store
	TokenService      *service.TokenService
	SyncService       *service.EndpointSyncService
	QueryService      *service.EndpointQueryService
	PermissionService *service.PermissionService
	RoleService       *service.RoleService
	Revocation        *service.RevocationService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	issuer, version string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		keys:      keys,
		verifier:  verifier,
		issuer:    issuer,
		version:   version,
		startTime: time.Now(),
		store:     st,
		logger:    logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		obs.Instrument,
	}

	return r
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerEndpoints()
	r.registerAdmin()
	r.registerSystem()
}

func (r *Router) registerAuth() {
	authHandler := &AuthHandler{TokenService: r.TokenService}

	// Login carries the brute-force risk, so it gets the strict profile.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(authHandler.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(authHandler.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(authHandler.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerEndpoints() {
	syncHandler := &SyncHandler{SyncService: r.SyncService}
	r.Mux.Handle("POST /v1/endpoints/sync",
		httpx.Chain(http.HandlerFunc(syncHandler.HandleSync),
			httpx.AuthnMiddleware(r.verifier, r.Revocation),
			httpx.RequirePermission(PermEndpointSync),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Services that sync their endpoints may also read the mappings back.
	queryHandler := &EndpointQueryHandler{QueryService: r.QueryService}
	r.Mux.Handle("GET /v1/endpoints/lookup",
		httpx.Chain(http.HandlerFunc(queryHandler.HandleLookup),
			httpx.AuthnMiddleware(r.verifier, r.Revocation),
			httpx.RequireAnyPermission(PermEndpointRead, PermEndpointSync),
			httpx.RateLimitByUser(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /v1/endpoints/active",
		httpx.Chain(http.HandlerFunc(queryHandler.HandleListActive),
			httpx.AuthnMiddleware(r.verifier, r.Revocation),
			httpx.RequireAnyPermission(PermEndpointRead, PermEndpointSync),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	permHandler := &PermissionHandler{PermissionService: r.PermissionService, RoleService: r.RoleService}
	r.Mux.Handle("POST /v1/permissions",
		httpx.Chain(http.HandlerFunc(permHandler.HandleCreate),
			httpx.AuthnMiddleware(r.verifier, r.Revocation),
			httpx.RequirePermission(PermPermissionManage),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/permissions/{key}",
		httpx.Chain(http.HandlerFunc(permHandler.HandleGet),
			httpx.AuthnMiddleware(r.verifier, r.Revocation),
			httpx.RequirePermission(PermPermissionManage),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/permissions/{id}",
		httpx.Chain(http.HandlerFunc(permHandler.HandleUpdate),
			httpx.AuthnMiddleware(r.verifier, r.Revocation),
			httpx.RequirePermission(PermPermissionManage),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/permissions/{id}",
		httpx.Chain(http.HandlerFunc(permHandler.HandleDelete),
			httpx.AuthnMiddleware(r.verifier, r.Revocation),
			httpx.RequirePermission(PermPermissionManage),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	roleHandler := &RoleHandler{RoleService: r.RoleService}
	r.Mux.Handle("POST /v1/roles",
		httpx.Chain(http.HandlerFunc(roleHandler.HandleCreate),
			httpx.AuthnMiddleware(r.verifier, r.Revocation),
			httpx.RequirePermission(PermRoleManage),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/roles/{id}/permissions",
		httpx.Chain(http.HandlerFunc(roleHandler.HandleGrant),
			httpx.AuthnMiddleware(r.verifier, r.Revocation),
			httpx.RequirePermission(PermRoleManage),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/roles/{id}/permissions/{pid}",
		httpx.Chain(http.HandlerFunc(roleHandler.HandleRevoke),
			httpx.AuthnMiddleware(r.verifier, r.Revocation),
			httpx.RequirePermission(PermRoleManage),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.version))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.version, r.store, r.keys, r.verifier))
	r.Mux.Handle("GET /metrics", obs.Handler())
}
