// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// matching on error strings.
package repository

import "errors"

// ErrEmailExists is returned when an insert would violate the unique
// constraint on users.email. Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")
