package domain

import "errors"

var (
	// ErrNotFound is returned when an entity id does not resolve, including soft-deleted entities.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName is returned when a name or slug is already taken within its scope.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrConflict is returned when a version stamp does not match the stored one.
	ErrConflict = errors.New("write conflict")

	// ErrMalformedKey is returned when a configuration key path has no ':' separator.
	ErrMalformedKey = errors.New("malformed key")

	// ErrValidation is returned when input fails validation.
	ErrValidation = errors.New("validation failed")
)
