// Package auth implements the session-token lifecycle: credential
// verification, access/refresh token issuance, refresh-token storage and
// rotation. Handlers map the sentinel errors below onto HTTP statuses
// with errors.Is instead of matching message strings.
package auth

import "errors"

var (
	// ErrBadRequest is returned when required input is missing or a
	// presented refresh token does not match the stored hash.
	ErrBadRequest = errors.New("bad request")
	// ErrUnauthorized is returned when credential verification fails.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when no user exists for an email or no
	// active refresh-token record exists for a user.
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when token generation yields an unexpected
	// empty value. It signals a signing-layer malfunction and is never
	// exposed with detail to the client.
	ErrInternal = errors.New("internal error")
)
