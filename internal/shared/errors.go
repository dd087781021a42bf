package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")
	ErrNoAuthCode       = fmt.Errorf("no authorization code available")

	// Polling and API errors
	ErrTransport         = fmt.Errorf("transport failure")
	ErrRateLimited       = fmt.Errorf("rate limited")
	ErrMalformedResponse = fmt.Errorf("malformed response")
	ErrPrivateSession    = fmt.Errorf("session is private")
	ErrCoolingDown       = fmt.Errorf("request suppressed during cooldown")
	ErrAPIRequest        = fmt.Errorf("API request failed")

	// Input validation errors
	ErrInvalidInput      = fmt.Errorf("invalid input")
	ErrUnknownCapability = fmt.Errorf("unknown capability")
)
