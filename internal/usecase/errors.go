package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrFeedUnavailable marks a structural fetch failure (non-200,
	// malformed JSON, missing expected subtree) as opposed to a payload
	// that is well-formed but empty.
	ErrFeedUnavailable = errors.New("feed data unavailable")

	// ErrConstraintViolation marks a per-record insert failure the loader
	// may skip without aborting the open transaction. Any other insert
	// error is treated as fatal for the fixture.
	ErrConstraintViolation = errors.New("constraint violation")
)
