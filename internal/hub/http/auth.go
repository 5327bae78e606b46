package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/accesshub/accesshub/internal/hub/domain"
	"github.com/accesshub/accesshub/internal/hub/obs"
	"github.com/accesshub/accesshub/internal/hub/service"
	"github.com/accesshub/accesshub/pkg/httpx"
)

// AuthHandler serves the login, refresh, and logout endpoints.
type AuthHandler struct {
	TokenService *service.TokenService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfa_code,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

func newTokenResponse(pair *domain.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		TokenType:        pair.TokenType,
		ExpiresIn:        int64(pair.ExpiresIn / time.Second),
		RefreshExpiresIn: int64(pair.RefreshExpiresIn / time.Second),
	}
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	pair, err := h.TokenService.Login(r.Context(), req.Email, req.Password, req.MFACode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMFARequired):
			httpx.WriteError(w, http.StatusUnauthorized, "mfa_required", "totp code required")
		case errors.Is(err, service.ErrInvalidMFACode),
			errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "")
		case errors.Is(err, service.ErrInvalidState):
			// Correct credentials, but the account is not loginable.
			httpx.WriteError(w, http.StatusForbidden, "account_inactive", "")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		}
		return
	}

	obs.TokenIssued("login")
	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair))
}

func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "refresh_token is required")
		return
	}

	pair, err := h.TokenService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		// Expired, replayed, malformed, and unknown tokens all look the same
		// from the outside.
		switch {
		case errors.Is(err, service.ErrInvalidRefresh),
			errors.Is(err, service.ErrInvalidState):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "")
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		}
		return
	}

	obs.TokenIssued("refresh")
	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair))
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	authz := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(authz) <= len(prefix) || authz[:len(prefix)] != prefix {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "")
		return
	}
	accessToken := authz[len(prefix):]

	var req logoutRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // body is optional

	err := h.TokenService.Logout(r.Context(), accessToken, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "")
			return
		}
		// The blacklist write failed; the session is NOT revoked and the
		// caller must not be told it was.
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	obs.TokenRevoked()
	w.WriteHeader(http.StatusNoContent)
}
