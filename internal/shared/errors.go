package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrNoCredentials     = fmt.Errorf("no credentials available")
	ErrNotAuthenticated  = fmt.Errorf("not authenticated")
	ErrAuthFailed        = fmt.Errorf("authentication failed")
	ErrTokenExpired      = fmt.Errorf("access token expired")
	ErrSessionExpired    = fmt.Errorf("session expired")
	ErrRefreshFailed     = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken    = fmt.Errorf("no refresh token available")
	ErrInvalidTokenState = fmt.Errorf("invalid token state")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTimeout            = fmt.Errorf("operation timed out")
	ErrThemeNotFound      = fmt.Errorf("theme not found")
	ErrGenerationFailed   = fmt.Errorf("theme generation failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
