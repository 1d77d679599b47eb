package hashstore

import (
	"context"
	"io"
	"time"
)

// Source supplies the textual representation of a population.
type Source interface {
	// Open returns a reader over the source contents.
	Open(ctx context.Context) (io.ReadCloser, error)
	// String names the source for diagnostics.
	String() string
}

// State is the lifecycle state of a store.
type State int

const (
	StateUnloaded State = iota
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// LoadInfo describes the outcome of a Load call.
type LoadInfo struct {
	Source   string
	Count    int
	Unique   int
	Duration time.Duration
	State    State
}

// Info describes the guarantees of a backend.
type Info struct {
	Backend string

	// Exact reports that every population member within threshold is returned.
	Exact bool

	// Deduplicated reports that duplicate codes collapse to one match.
	Deduplicated bool

	// K is the per-query candidate budget of bounded backends, or 0.
	K int
}

// Bounded reports whether results are limited to a per-query budget.
func (i Info) Bounded() bool { return i.K > 0 }

// Store is a threshold-radius Hamming search store.
//
// Implementations are safe for concurrent queries once loaded. Context is
// checked before work begins; a started query runs to completion.
type Store[H Code] interface {
	// Load reads the population from src. A store can be loaded once.
	Load(ctx context.Context, src Source) (LoadInfo, error)

	// Entries returns the population in ascending order.
	Entries() []H

	// Search returns every member within threshold (inclusive) of query.
	Search(ctx context.Context, query H, threshold int) (Result[H], error)

	// BatchSearch returns one result per query, sorted by query code.
	BatchSearch(ctx context.Context, queries []H, threshold int) ([]Result[H], error)

	// State returns the lifecycle state.
	State() State

	// Info describes the backend.
	Info() Info
}
