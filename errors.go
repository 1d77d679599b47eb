package hashsearch

import (
	"errors"
	"fmt"

	"github.com/mgaillard/hashsearch/hashstore"
)

var (
	ErrSourceUnavailable = hashstore.ErrSourceUnavailable
	ErrMalformedToken    = hashstore.ErrMalformedToken
	ErrAlreadyLoaded     = hashstore.ErrAlreadyLoaded
	ErrInvalidThreshold  = hashstore.ErrInvalidThreshold
	ErrCapacityExceeded  = hashstore.ErrCapacityExceeded

	// ErrInvalidBackend is returned for an unknown backend.
	ErrInvalidBackend = errors.New("hashsearch: invalid backend")
)

type (
	// ParseError reports a malformed token in a load source.
	ParseError = hashstore.ParseError
	// CapacityError reports a device result buffer overflow.
	CapacityError = hashstore.CapacityError
)

// ErrInvalidOption indicates an option value a backend cannot accept.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidOption struct {
	Option string
	Value  any
	cause  error
}

func (e *ErrInvalidOption) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("hashsearch: invalid option %s=%v: %v", e.Option, e.Value, e.cause)
	}
	return fmt.Sprintf("hashsearch: invalid option %s=%v", e.Option, e.Value)
}

func (e *ErrInvalidOption) Unwrap() error { return e.cause }
