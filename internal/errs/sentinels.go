// Package errs contains sentinel errors shared by the repository, service and handler layers.
package errs

import "errors"

var (
	// ErrValidation marks input rejected before any write happens.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the entity does not exist or is not owned by the requester.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyConsumed is returned when consuming an item that is already consumed.
	ErrAlreadyConsumed = errors.New("item already consumed")

	// ErrAlreadyExists indicates a unique constraint violation.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates failed authentication.
	ErrUnauthorized = errors.New("unauthorized")
)
