package core

import (
	"errors"
	"net/http"
)

// HTTPStatus maps an error returned by the services to a response status.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, ErrMissingCredential),
		errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, ErrInvalidCredential),
		errors.Is(err, ErrStoreFailure),
		errors.Is(err, ErrInvalidResetToken):
		return http.StatusForbidden

	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrEmailRequired),
		errors.Is(err, ErrPasswordRequired),
		errors.Is(err, ErrWrongFormat),
		errors.Is(err, ErrUserExists),
		errors.Is(err, ErrUserIDRequired),
		errors.Is(err, ErrUnknownAttribute):
		return http.StatusBadRequest

	case errors.Is(err, ErrTooManyAttempts):
		return http.StatusTooManyRequests

	default:
		return http.StatusInternalServerError
	}
}
