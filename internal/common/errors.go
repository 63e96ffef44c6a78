// Package common defines shared constants and sentinel errors used across
// client and server layers of docshare. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level error categories. Boundaries translate these into
	// transport status codes; the wrapped detail is never shown to callers.
	ErrorInternal     = errors.New("internal error")
	ErrorBadRequest   = errors.New("bad request")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Account state errors.
	ErrorNotVerified = errors.New("email not verified")

	// Validation errors.
	ErrorUnsupportedFileType = errors.New("unsupported file type")
	ErrorInvalidCredentials  = errors.New("invalid login/password")

	// Token lifecycle errors.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

// Category returns the outermost category sentinel err belongs to, or
// ErrorInternal when it matches none. It is what boundaries log.
func Category(err error) error {
	for _, c := range []error{
		ErrorBadRequest,
		ErrorUnauthorized,
		ErrorForbidden,
		ErrorNotFound,
		ErrorAlreadyExists,
		ErrorNotVerified,
	} {
		if errors.Is(err, c) {
			return c
		}
	}
	return ErrorInternal
}
