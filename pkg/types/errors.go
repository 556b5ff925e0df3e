package types

import "errors"

// Domain errors for type validation
var (
	ErrEmptyQuery   = errors.New("query cannot be empty")
	ErrInvalidLimit = errors.New("limit must be >= 1")
	ErrMissingPath  = errors.New("file path is required")
)
