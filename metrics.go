package hashsearch

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see
// metrics/prometheus for a Prometheus implementation.
type MetricsCollector interface {
	// RecordLoad is called after each load. count is the population size,
	// err is nil if successful.
	RecordLoad(count int, duration time.Duration, err error)

	// RecordSearch is called after each search operation.
	// matches is the number of matches returned.
	RecordSearch(threshold, matches int, duration time.Duration, err error)

	// RecordBatchSearch is called after each batch search operation.
	// matches is the total over all queries.
	RecordBatchSearch(queries, matches int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)             {}
func (NoopMetricsCollector) RecordSearch(int, int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordBatchSearch(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount         atomic.Int64
	LoadErrors        atomic.Int64
	Population        atomic.Int64
	SearchCount       atomic.Int64
	SearchErrors      atomic.Int64
	SearchMatches     atomic.Int64
	SearchTotalNanos  atomic.Int64
	BatchSearchCount  atomic.Int64
	BatchSearchErrors atomic.Int64
	BatchQueries      atomic.Int64
	BatchMatches      atomic.Int64
	BatchTotalNanos   atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(count int, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.Population.Store(int64(count))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ int, matches int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
		return
	}
	b.SearchMatches.Add(int64(matches))
}

// RecordBatchSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchSearch(queries, matches int, duration time.Duration, err error) {
	b.BatchSearchCount.Add(1)
	b.BatchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BatchSearchErrors.Add(1)
		return
	}
	b.BatchQueries.Add(int64(queries))
	b.BatchMatches.Add(int64(matches))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:         b.LoadCount.Load(),
		LoadErrors:        b.LoadErrors.Load(),
		Population:        b.Population.Load(),
		SearchCount:       b.SearchCount.Load(),
		SearchErrors:      b.SearchErrors.Load(),
		SearchMatches:     b.SearchMatches.Load(),
		SearchAvgNanos:    avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		BatchSearchCount:  b.BatchSearchCount.Load(),
		BatchSearchErrors: b.BatchSearchErrors.Load(),
		BatchQueries:      b.BatchQueries.Load(),
		BatchMatches:      b.BatchMatches.Load(),
		BatchAvgNanos:     avg(b.BatchTotalNanos.Load(), b.BatchSearchCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount         int64
	LoadErrors        int64
	Population        int64
	SearchCount       int64
	SearchErrors      int64
	SearchMatches     int64
	SearchAvgNanos    int64
	BatchSearchCount  int64
	BatchSearchErrors int64
	BatchQueries      int64
	BatchMatches      int64
	BatchAvgNanos     int64
}
