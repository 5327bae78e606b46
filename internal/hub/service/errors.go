package service

import "errors"

var (
	ErrNotFound           = errors.New("not_found")
	ErrDuplicate          = errors.New("duplicate")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidState       = errors.New("invalid_state")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrMFARequired        = errors.New("mfa_required")
	ErrInvalidMFACode     = errors.New("invalid_mfa_code")
)
