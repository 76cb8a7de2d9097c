package usecase

import "github.com/cockroachdb/errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("resource already exists")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrExtractionFailed      = errors.New("fact extraction failed")
)
