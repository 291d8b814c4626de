package complaints

import "errors"

var (
	// ErrMissingDescription is returned when a complaint has no problem text
	ErrMissingDescription = errors.New("complaint description is required")

	// ErrNotFound is returned when a complaint is not found
	ErrNotFound = errors.New("complaint not found")
)
