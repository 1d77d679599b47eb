package hashstore

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable is returned when a load source cannot be opened or read.
	ErrSourceUnavailable = errors.New("hashstore: source unavailable")

	// ErrMalformedToken is returned when a load source contains a token that
	// is not a valid code.
	ErrMalformedToken = errors.New("hashstore: malformed token")

	// ErrAlreadyLoaded is returned by Load on a loaded store.
	ErrAlreadyLoaded = errors.New("hashstore: already loaded")

	// ErrInvalidThreshold is returned for negative thresholds.
	ErrInvalidThreshold = errors.New("hashstore: threshold must be non-negative")

	// ErrCapacityExceeded is returned when more candidates pass a filter than
	// a fixed result buffer can hold.
	ErrCapacityExceeded = errors.New("hashstore: result capacity exceeded")
)

// ParseError reports a malformed token in a load source.
type ParseError struct {
	// Offset is the zero-based index of the token in the source.
	Offset int
	Token  string
	cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("hashstore: malformed token %q at offset %d: %v", e.Token, e.Offset, e.cause)
}

func (e *ParseError) Unwrap() []error { return []error{ErrMalformedToken, e.cause} }

// CapacityError reports a result buffer overflow.
type CapacityError struct {
	Capacity int
	Selected int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("hashstore: %d candidates exceed result capacity %d", e.Selected, e.Capacity)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// ValidateThreshold returns ErrInvalidThreshold for negative thresholds.
func ValidateThreshold(threshold int) error {
	if threshold < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, threshold)
	}
	return nil
}
