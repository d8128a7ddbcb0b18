package core

import "errors"

// Request authentication errors
var (
	ErrMissingCredential = errors.New("unauthorized")             // 401 - no header, no cookie
	ErrInvalidCredential = errors.New("forbidden")                // 403 - credential presented but unresolved
	ErrStoreFailure      = errors.New("credential store failure") // logged, surfaced as 403
)

// User errors
var (
	ErrUserExists         = errors.New("user already exists")       // 400 Bad Request
	ErrUserNotFound       = errors.New("user not found")            // 404 Not Found
	ErrInvalidCredentials = errors.New("invalid email or password") // 401 Unauthorized
	ErrInvalidResetToken  = errors.New("invalid reset token")       // 403 Forbidden
	ErrTooManyAttempts    = errors.New("too many login attempts")   // 429 Too Many Requests
	ErrUnknownAttribute   = errors.New("unknown user attribute")
)

// Session errors
var (
	ErrUserIDRequired  = errors.New("user id is required")
	ErrSessionNotFound = errors.New("session not found")
)

// Validation errors (client input)
var (
	ErrEmailRequired    = errors.New("email missing")    // 400
	ErrPasswordRequired = errors.New("password missing") // 400
	ErrWrongFormat      = errors.New("wrong format")     // 400
)

// Config errors (server-side configuration)
var (
	ErrUnknownAuthMode      = errors.New("unknown auth mode")            // 500
	ErrUserStorageRequired  = errors.New("user storage is required")     // 500
	ErrSessionStoreRequired = errors.New("session storage is required")  // 500
	ErrCookieNameRequired   = errors.New("session cookie name required") // 500
)
