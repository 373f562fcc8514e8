package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid account or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrMissingToken       = errors.New("backend returned no access token")
)
