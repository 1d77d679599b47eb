// Package gpu provides a hash store that filters a deduplicated,
// device-resident copy of the population with a data-parallel kernel.
package gpu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mgaillard/hashsearch/device"
	"github.com/mgaillard/hashsearch/hashstore"
	"github.com/mgaillard/hashsearch/index"
)

var _ hashstore.Store[uint64] = (*Store[uint64])(nil)

// Store is an exact hash store backed by a device. Duplicate codes collapse
// to a single match.
type Store[H hashstore.Code] struct {
	opts   Options[H]
	logger *slog.Logger
	dev    *device.Device
	pop    index.Population[H]

	// mu guards the device buffers.
	mu      sync.Mutex
	codes   *device.Buffer[H]
	results *device.Buffer[H]
}

// New creates a device-filtered store.
func New[H hashstore.Code](optFns ...func(o *Options[H])) *Store[H] {
	opts := DefaultOptions[H]()
	for _, fn := range optFns {
		fn(&opts)
	}
	defaults := DefaultOptions[H]()
	if opts.HostMetric == nil {
		opts.HostMetric = defaults.HostMetric
	}
	if opts.DeviceMetric == nil {
		opts.DeviceMetric = defaults.DeviceMetric
	}
	if opts.ResultCapacity <= 0 {
		opts.ResultCapacity = defaults.ResultCapacity
	}
	dev := opts.Device
	if dev == nil {
		dev = device.New()
	}
	return &Store[H]{
		opts:   opts,
		logger: index.DiscardLogger(opts.Logger).With("backend", "gpu", "overflow", opts.Overflow.String()),
		dev:    dev,
	}
}

// Load reads the population, keeps a host copy and uploads a deduplicated
// copy to the device.
func (s *Store[H]) Load(ctx context.Context, src hashstore.Source) (hashstore.LoadInfo, error) {
	return s.pop.Load(ctx, src, s.logger, s.upload)
}

func (s *Store[H]) upload(sorted []H) error {
	codes, err := device.Upload(s.dev, sorted)
	if err != nil {
		return fmt.Errorf("gpu: upload population: %w", err)
	}
	if err := device.SortUnique(codes); err != nil {
		codes.Free()
		return fmt.Errorf("gpu: deduplicate population: %w", err)
	}
	results, err := device.Alloc[H](s.dev, s.opts.ResultCapacity)
	if err != nil {
		codes.Free()
		return fmt.Errorf("gpu: allocate result buffer: %w", err)
	}

	s.mu.Lock()
	s.codes, s.results = codes, results
	s.mu.Unlock()

	s.logger.Debug("population uploaded",
		"device", s.dev.Info().Name,
		"unique", codes.Len(),
		"device_bytes", s.dev.MemoryUsage(),
	)
	return nil
}

// Entries returns the host copy of the population, duplicates included.
func (s *Store[H]) Entries() []H { return s.pop.Entries() }

// State returns the lifecycle state.
func (s *Store[H]) State() hashstore.State { return s.pop.State() }

// Info describes the backend.
func (s *Store[H]) Info() hashstore.Info {
	return hashstore.Info{Backend: "gpu", Exact: s.opts.Overflow != OverflowTruncate, Deduplicated: true}
}

// Search filters the device population for codes within threshold of query.
func (s *Store[H]) Search(ctx context.Context, query H, threshold int) (hashstore.Result[H], error) {
	if err := hashstore.ValidateThreshold(threshold); err != nil {
		return hashstore.Result[H]{}, err
	}
	if err := ctx.Err(); err != nil {
		return hashstore.Result[H]{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.codes == nil {
		return hashstore.NewResult[H](query, nil), nil
	}

	survivors, truncated, err := s.filter(query, threshold)
	if err != nil {
		return hashstore.Result[H]{}, err
	}

	matches := make([]hashstore.Match[H], len(survivors))
	for i, c := range survivors {
		matches[i] = hashstore.Match[H]{Distance: s.opts.HostMetric(query, c), Hash: c}
	}
	res := hashstore.NewResult(query, matches)
	res.Truncated = truncated
	return res, nil
}

// filter runs the kernel and applies the overflow policy. s.mu must be held.
func (s *Store[H]) filter(query H, threshold int) ([]H, bool, error) {
	metric := s.opts.DeviceMetric
	pred := func(c H) bool { return metric(query, c) <= threshold }

	res, err := device.CopyIf(s.codes, s.results, pred)
	if err != nil {
		return nil, false, err
	}

	truncated := false
	if res.Overflow() {
		switch s.opts.Overflow {
		case OverflowGrow:
			s.logger.Debug("growing result buffer", "from", s.results.Cap(), "to", res.Selected)
			if err := s.results.Resize(res.Selected); err != nil {
				return nil, false, fmt.Errorf("gpu: grow result buffer: %w", err)
			}
			if res, err = device.CopyIf(s.codes, s.results, pred); err != nil {
				return nil, false, err
			}
			if res.Overflow() {
				return nil, false, errors.New("gpu: result buffer overflow after grow")
			}
		case OverflowTruncate:
			truncated = true
		default:
			return nil, false, &hashstore.CapacityError{Capacity: s.results.Cap(), Selected: res.Selected}
		}
	}

	survivors, err := device.Download(s.results, res.Copied)
	if err != nil {
		return nil, false, err
	}
	return survivors, truncated, nil
}

// BatchSearch runs the queries one after another and sorts the results by
// query code.
func (s *Store[H]) BatchSearch(ctx context.Context, queries []H, threshold int) ([]hashstore.Result[H], error) {
	return index.SequentialBatch(ctx, queries, threshold, s.Search)
}

// Close releases the device buffers. The host copy stays available.
func (s *Store[H]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.codes != nil {
		s.codes.Free()
		s.codes = nil
	}
	if s.results != nil {
		s.results.Free()
		s.results = nil
	}
	return nil
}
