package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing option, keyword or facet.
	ErrNotFound = errors.New("not found")
	// ErrInvalidPattern signals a keyword pattern that does not compile.
	ErrInvalidPattern = errors.New("invalid keyword pattern")
	// ErrInvalidLimit signals a negative view limit.
	ErrInvalidLimit = errors.New("invalid limit")
	// ErrUnknownSortKey signals an unsupported sort criterion.
	ErrUnknownSortKey = errors.New("unknown sort key")
	// ErrSourceUnavailable signals a job board that cannot be reached.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// InvalidPatternError wraps ErrInvalidPattern with the offending pattern.
type InvalidPatternError struct {
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrInvalidPattern.Error(), e.Pattern, e.Err)
}

// Unwrap exposes both the sentinel and the compiler error.
func (e *InvalidPatternError) Unwrap() []error { return []error{ErrInvalidPattern, e.Err} }

// NewInvalidPattern creates an invalid pattern error.
func NewInvalidPattern(pattern string, cause error) error {
	return &InvalidPatternError{Pattern: pattern, Err: cause}
}
