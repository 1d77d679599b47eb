// Package bruteforce provides an exact hash store that scans the whole
// population in parallel for every query.
package bruteforce

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/mgaillard/hashsearch/distance"
	"github.com/mgaillard/hashsearch/hashstore"
	"github.com/mgaillard/hashsearch/index"
)

// Options contains configuration options for the brute-force store.
type Options[H hashstore.Code] struct {
	// Metric computes the distance between two codes.
	Metric distance.Func[H]

	// Workers is the number of goroutines scanning one query.
	// If <= 0, runtime.GOMAXPROCS(0) is used.
	Workers int

	// MinPartition is the smallest slice of the population given to a worker.
	MinPartition int

	Logger *slog.Logger
}

// DefaultOptions returns the default configuration.
func DefaultOptions[H hashstore.Code]() Options[H] {
	return Options[H]{
		Metric:       distance.Hamming[H],
		MinPartition: 8192,
	}
}

var _ hashstore.Store[uint64] = (*Store[uint64])(nil)

// Store is an exact brute-force hash store. Duplicates are preserved.
type Store[H hashstore.Code] struct {
	opts   Options[H]
	logger *slog.Logger
	pop    index.Population[H]
}

// New creates a brute-force store.
func New[H hashstore.Code](optFns ...func(o *Options[H])) *Store[H] {
	opts := DefaultOptions[H]()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Metric == nil {
		opts.Metric = distance.Hamming[H]
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.MinPartition <= 0 {
		opts.MinPartition = 1
	}
	return &Store[H]{
		opts:   opts,
		logger: index.DiscardLogger(opts.Logger).With("backend", "bruteforce"),
	}
}

// Load reads and sorts the population.
func (s *Store[H]) Load(ctx context.Context, src hashstore.Source) (hashstore.LoadInfo, error) {
	return s.pop.Load(ctx, src, s.logger, nil)
}

// Entries returns the population in ascending order.
func (s *Store[H]) Entries() []H { return s.pop.Entries() }

// State returns the lifecycle state.
func (s *Store[H]) State() hashstore.State { return s.pop.State() }

// Info describes the backend.
func (s *Store[H]) Info() hashstore.Info {
	return hashstore.Info{Backend: "bruteforce", Exact: true}
}

// Search scans the population for codes within threshold of query.
func (s *Store[H]) Search(ctx context.Context, query H, threshold int) (hashstore.Result[H], error) {
	if err := hashstore.ValidateThreshold(threshold); err != nil {
		return hashstore.Result[H]{}, err
	}
	if err := ctx.Err(); err != nil {
		return hashstore.Result[H]{}, err
	}

	entries, _ := s.pop.View()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		matches []hashstore.Match[H]
	)

	metric := s.opts.Metric
	for _, part := range s.partitions(len(entries)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, c := range entries[part[0]:part[1]] {
				d := metric(query, c)
				if d <= threshold {
					mu.Lock()
					matches = append(matches, hashstore.Match[H]{Distance: d, Hash: c})
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	return hashstore.NewResult(query, matches), nil
}

// BatchSearch runs the queries one after another and sorts the results by
// query code.
func (s *Store[H]) BatchSearch(ctx context.Context, queries []H, threshold int) ([]hashstore.Result[H], error) {
	return index.SequentialBatch(ctx, queries, threshold, s.Search)
}

func (s *Store[H]) partitions(n int) [][2]int {
	if n == 0 {
		return nil
	}
	workers := min(s.opts.Workers, (n+s.opts.MinPartition-1)/s.opts.MinPartition)
	workers = max(workers, 1)
	size := (n + workers - 1) / workers

	parts := make([][2]int, 0, workers)
	for lo := 0; lo < n; lo += size {
		parts = append(parts, [2]int{lo, min(lo+size, n)})
	}
	return parts
}
