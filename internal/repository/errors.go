// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios and translate them
// into the proper HTTP status codes.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the uniqueness
// constraint on an email or username column. The storage-level constraint
// is the authority: a race between the existence check and the insert is
// resolved by the database rejecting the second writer. Handlers should
// translate this into an HTTP 400 response.
var ErrEmailExists = errors.New("email already exists")
