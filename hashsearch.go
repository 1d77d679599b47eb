package hashsearch

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mgaillard/hashsearch/device"
	"github.com/mgaillard/hashsearch/hashstore"
	"github.com/mgaillard/hashsearch/index/bruteforce"
	"github.com/mgaillard/hashsearch/index/gpu"
	"github.com/mgaillard/hashsearch/index/mih"
)

type (
	// Code is the constraint satisfied by hash types.
	Code = hashstore.Code
	// Source supplies the textual representation of a population.
	Source = hashstore.Source
	// LoadInfo describes the outcome of a Load call.
	LoadInfo = hashstore.LoadInfo
	// Info describes the guarantees of a backend.
	Info = hashstore.Info
	// State is the lifecycle state of a store.
	State = hashstore.State
)

const (
	StateUnloaded = hashstore.StateUnloaded
	StateLoaded   = hashstore.StateLoaded
)

// Match is a population member within threshold of a query.
type Match[H Code] = hashstore.Match[H]

// Result holds the matches of one query.
type Result[H Code] = hashstore.Result[H]

// Backend selects a search strategy.
type Backend int

const (
	BackendBruteForce Backend = iota
	BackendGPU
	BackendIndexed
)

func (b Backend) String() string {
	switch b {
	case BackendBruteForce:
		return "bruteforce"
	case BackendGPU:
		return "gpu"
	case BackendIndexed:
		return "indexed"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend parses a backend name.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(s) {
	case "bruteforce", "brute-force", "brute_force":
		return BackendBruteForce, nil
	case "gpu", "device":
		return BackendGPU, nil
	case "indexed", "mih":
		return BackendIndexed, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidBackend, s)
	}
}

var _ hashstore.Store[uint64] = (*Searcher[uint64])(nil)

// Searcher is a hash store with logging, metrics and concurrency limiting
// around a backend. It is safe for concurrent use.
type Searcher[H Code] struct {
	backend Backend
	store   hashstore.Store[H]
	opts    options
	logger  *Logger
}

// New creates a Searcher on the given backend.
func New[H Code](backend Backend, optFns ...Option) (*Searcher[H], error) {
	opts := applyOptions(optFns)
	if err := opts.validate(); err != nil {
		return nil, err
	}

	logger := opts.logger.WithBackend(backend)

	var store hashstore.Store[H]
	switch backend {
	case BackendBruteForce:
		store = bruteforce.New(func(o *bruteforce.Options[H]) {
			o.Workers = opts.workers
			o.Logger = opts.logger.Logger
		})
	case BackendGPU:
		dev := opts.device
		if dev == nil {
			dev = device.New(func(o *device.Options) { o.Controller = opts.controller })
		}
		store = gpu.New(func(o *gpu.Options[H]) {
			o.Device = dev
			o.ResultCapacity = opts.resultCapacity
			o.Overflow = opts.overflow
			o.Logger = opts.logger.Logger
		})
	case BackendIndexed:
		s, err := mih.New(func(o *mih.Options[H]) {
			if opts.chunks > 0 {
				o.Chunks = opts.chunks
			}
			if opts.k > 0 {
				o.K = opts.k
			}
			o.Logger = opts.logger.Logger
		})
		if err != nil {
			return nil, &ErrInvalidOption{Option: "chunks", Value: opts.chunks, cause: err}
		}
		store = s
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidBackend, int(backend))
	}

	return &Searcher[H]{
		backend: backend,
		store:   store,
		opts:    opts,
		logger:  logger,
	}, nil
}

// Backend returns the selected backend.
func (s *Searcher[H]) Backend() Backend { return s.backend }

// Load reads the population from src. A searcher can be loaded once.
func (s *Searcher[H]) Load(ctx context.Context, src Source) (LoadInfo, error) {
	start := time.Now()
	info, err := s.store.Load(ctx, src)
	if err != nil {
		info.Duration = time.Since(start)
	}
	s.opts.metricsCollector.RecordLoad(info.Count, info.Duration, err)
	s.logger.LogLoad(ctx, info, err)
	return info, err
}

// Entries returns the population in ascending order.
func (s *Searcher[H]) Entries() []H { return s.store.Entries() }

// State returns the lifecycle state.
func (s *Searcher[H]) State() State { return s.store.State() }

// Info describes the backend.
func (s *Searcher[H]) Info() Info { return s.store.Info() }

// Search returns every member within threshold (inclusive) of query.
func (s *Searcher[H]) Search(ctx context.Context, query H, threshold int) (Result[H], error) {
	if err := s.opts.controller.AcquireWorker(ctx); err != nil {
		return Result[H]{}, err
	}
	defer s.opts.controller.ReleaseWorker()

	start := time.Now()
	res, err := s.store.Search(ctx, query, threshold)
	elapsed := time.Since(start)

	s.opts.metricsCollector.RecordSearch(threshold, len(res.Matches), elapsed, err)
	s.logger.LogSearch(ctx, threshold, len(res.Matches), res.Truncated, elapsed, err)
	return res, err
}

// BatchSearch returns one result per query, sorted by query code.
func (s *Searcher[H]) BatchSearch(ctx context.Context, queries []H, threshold int) ([]Result[H], error) {
	if err := s.opts.controller.AcquireWorker(ctx); err != nil {
		return nil, err
	}
	defer s.opts.controller.ReleaseWorker()

	start := time.Now()
	results, err := s.store.BatchSearch(ctx, queries, threshold)
	elapsed := time.Since(start)

	var matches, truncated int
	for _, r := range results {
		matches += len(r.Matches)
		if r.Truncated {
			truncated++
		}
	}
	s.opts.metricsCollector.RecordBatchSearch(len(queries), matches, elapsed, err)
	s.logger.LogBatchSearch(ctx, len(queries), threshold, matches, truncated, elapsed, err)
	return results, err
}

// Close releases backend resources such as device buffers.
func (s *Searcher[H]) Close() error {
	if c, ok := s.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
