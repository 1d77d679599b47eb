// Package mih provides a hash store backed by a multi-index hash table.
//
// Each query retrieves at most K nearest population members, which are then
// filtered by threshold. Members within threshold that fall outside the K
// nearest are omitted, so results are bounded rather than exact.
package mih

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mgaillard/hashsearch/distance"
	"github.com/mgaillard/hashsearch/hashstore"
	"github.com/mgaillard/hashsearch/index"
	"github.com/mgaillard/hashsearch/internal/arena"
	mihash "github.com/mgaillard/hashsearch/internal/mih"
)

// Options contains configuration options for the indexed store.
type Options[H hashstore.Code] struct {
	// Chunks is the number of substrings codes are split into.
	Chunks int

	// K is the retrieval budget per query.
	K int

	// Metric rescores retrieved candidates.
	Metric distance.Func[H]

	Logger *slog.Logger
}

// DefaultOptions returns the default configuration.
func DefaultOptions[H hashstore.Code]() Options[H] {
	return Options[H]{
		Chunks: 4,
		K:      32,
		Metric: distance.Hamming[H],
	}
}

var _ hashstore.Store[uint64] = (*Store[uint64])(nil)

// Store is a bounded hash store backed by a multi-index hash table.
// Duplicates are preserved.
type Store[H hashstore.Code] struct {
	opts   Options[H]
	logger *slog.Logger
	pop    index.Population[H]

	// mu serializes batch calls into the index.
	mu  sync.Mutex
	idx *mihash.Index

	scratch sync.Pool
}

type scratch struct {
	queries []byte
	results arena.Grid[uint32]
	counts  arena.Grid[uint32]
	stats   []mihash.Stats
}

// New creates an indexed store.
func New[H hashstore.Code](optFns ...func(o *Options[H])) (*Store[H], error) {
	opts := DefaultOptions[H]()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Metric == nil {
		opts.Metric = distance.Hamming[H]
	}

	idx, err := mihash.New(hashstore.Bits[H](), opts.Chunks)
	if err != nil {
		return nil, fmt.Errorf("mih: %w", err)
	}
	if err := idx.SetK(opts.K); err != nil {
		return nil, fmt.Errorf("mih: %w", err)
	}

	s := &Store[H]{
		opts: opts,
		logger: index.DiscardLogger(opts.Logger).With(
			"backend", "mih",
			"chunks", opts.Chunks,
			"k", opts.K,
		),
		idx: idx,
	}
	s.scratch.New = func() any { return new(scratch) }
	return s, nil
}

// Load reads the population and builds the substring tables.
func (s *Store[H]) Load(ctx context.Context, src hashstore.Source) (hashstore.LoadInfo, error) {
	return s.pop.Load(ctx, src, s.logger, s.populate)
}

func (s *Store[H]) populate(sorted []H) error {
	packed := arena.PackCodes(nil, sorted)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.idx.Populate(packed, len(sorted), hashstore.Bytes[H]()); err != nil {
		return fmt.Errorf("mih: populate: %w", err)
	}
	s.logger.Debug("index populated", "widths", s.idx.SubstringWidths(), "count", s.idx.Len())
	return nil
}

// Entries returns the population in ascending order.
func (s *Store[H]) Entries() []H { return s.pop.Entries() }

// State returns the lifecycle state.
func (s *Store[H]) State() hashstore.State { return s.pop.State() }

// Info describes the backend.
func (s *Store[H]) Info() hashstore.Info {
	return hashstore.Info{Backend: "mih", K: s.opts.K}
}

// Search answers a single query as a batch of one.
func (s *Store[H]) Search(ctx context.Context, query H, threshold int) (hashstore.Result[H], error) {
	results, err := s.BatchSearch(ctx, []H{query}, threshold)
	if err != nil {
		return hashstore.Result[H]{}, err
	}
	return results[0], nil
}

// BatchSearch answers all queries with one call into the index and sorts
// the results by query code.
func (s *Store[H]) BatchSearch(ctx context.Context, queries []H, threshold int) ([]hashstore.Result[H], error) {
	if err := hashstore.ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(queries) == 0 {
		return []hashstore.Result[H]{}, nil
	}

	entries, state := s.pop.View()
	if state != hashstore.StateLoaded {
		results := make([]hashstore.Result[H], len(queries))
		for i, q := range queries {
			results[i] = hashstore.NewResult[H](q, nil)
		}
		hashstore.SortResults(results)
		return results, nil
	}

	k, stride := s.opts.K, hashstore.Bits[H]()+1

	sc := s.scratch.Get().(*scratch)
	defer s.scratch.Put(sc)

	sc.queries = arena.PackCodes(sc.queries[:0], queries)
	sc.results.Reset(len(queries), k)
	sc.counts.Reset(len(queries), stride)
	if cap(sc.stats) < len(queries) {
		sc.stats = make([]mihash.Stats, len(queries))
	}
	sc.stats = sc.stats[:len(queries)]

	s.mu.Lock()
	err := s.idx.BatchQuery(sc.results.Flat(), sc.counts.Flat(), sc.stats, sc.queries, len(queries), hashstore.Bytes[H]())
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("mih: batch query: %w", err)
	}

	metric := s.opts.Metric
	results := make([]hashstore.Result[H], len(queries))
	var candidates, lookups int
	for i, q := range queries {
		var matches []hashstore.Match[H]
		for _, id := range sc.results.Row(i) {
			if id == 0 {
				continue
			}
			c := entries[id-1]
			if d := metric(q, c); d <= threshold {
				matches = append(matches, hashstore.Match[H]{Distance: d, Hash: c})
			}
		}
		results[i] = hashstore.NewResult(q, matches)
		candidates += sc.stats[i].Candidates
		lookups += sc.stats[i].Lookups
	}
	hashstore.SortResults(results)

	s.logger.DebugContext(ctx, "batch answered",
		"queries", len(queries),
		"candidates", candidates,
		"lookups", lookups,
	)
	return results, nil
}
