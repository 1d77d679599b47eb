package index

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/mgaillard/hashsearch/hashstore"
)

// Population is the load-once state shared by the backends: the sorted
// codes and the lifecycle state. The zero value is an unloaded, empty
// population.
type Population[H hashstore.Code] struct {
	mu      sync.RWMutex
	state   hashstore.State
	entries []H
}

// Load reads src, sorts the codes and hands them to prepare for
// backend-specific preprocessing. The population is committed only if
// prepare succeeds. Failures are logged and returned; the population stays
// unloaded and empty.
func (p *Population[H]) Load(ctx context.Context, src hashstore.Source, logger *slog.Logger, prepare func(sorted []H) error) (hashstore.LoadInfo, error) {
	start := time.Now()
	info := hashstore.LoadInfo{Source: src.String()}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == hashstore.StateLoaded {
		info.State = p.state
		info.Count = len(p.entries)
		return info, hashstore.ErrAlreadyLoaded
	}

	codes, err := hashstore.ReadCodes[H](ctx, src)
	if err == nil {
		slices.Sort(codes)
		if prepare != nil {
			err = prepare(codes)
		}
	}
	if err != nil {
		logger.ErrorContext(ctx, "load failed", "source", info.Source, "error", err)
		return info, err
	}

	p.entries = codes
	p.state = hashstore.StateLoaded

	info.State = p.state
	info.Count = len(codes)
	info.Unique = hashstore.CountUnique(codes)
	info.Duration = time.Since(start)

	logger.InfoContext(ctx, "population loaded",
		"source", info.Source,
		"count", info.Count,
		"unique", info.Unique,
		"duration", info.Duration,
	)
	return info, nil
}

// View returns the population and state. The slice must not be modified.
func (p *Population[H]) View() ([]H, hashstore.State) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.entries, p.state
}

// Entries returns a copy of the population in ascending order.
func (p *Population[H]) Entries() []H {
	entries, _ := p.View()
	return slices.Clone(entries)
}

// State returns the lifecycle state.
func (p *Population[H]) State() hashstore.State {
	_, s := p.View()
	return s
}

// DiscardLogger returns l, or a logger that drops everything if l is nil.
func DiscardLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// SequentialBatch answers queries one by one and sorts the results by query.
func SequentialBatch[H hashstore.Code](ctx context.Context, queries []H, threshold int, search func(context.Context, H, int) (hashstore.Result[H], error)) ([]hashstore.Result[H], error) {
	if err := hashstore.ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]hashstore.Result[H], 0, len(queries))
	for _, q := range queries {
		r, err := search(context.WithoutCancel(ctx), q, threshold)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	hashstore.SortResults(results)
	return results, nil
}
