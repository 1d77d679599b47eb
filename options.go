package hashsearch

import (
	"log/slog"

	"github.com/mgaillard/hashsearch/device"
	"github.com/mgaillard/hashsearch/index/gpu"
	"github.com/mgaillard/hashsearch/resource"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	controller       *resource.Controller
	device           *device.Device

	workers        int
	chunks         int
	k              int
	resultCapacity int
	overflow       gpu.OverflowPolicy
}

// Option configures a Searcher.
//
// Options that do not apply to the selected backend are ignored.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &hashsearch.BasicMetricsCollector{}
//	s, _ := hashsearch.New[uint64](hashsearch.BackendBruteForce, hashsearch.WithMetricsCollector(metrics))
//	// ... use s ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := hashsearch.NewJSONLogger(slog.LevelInfo)
//	s, _ := hashsearch.New[uint64](hashsearch.BackendGPU, hashsearch.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController limits concurrent queries with the controller's
// worker budget. For BackendGPU without WithDevice, the controller also
// accounts device memory.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithWorkers sets the number of goroutines scanning one brute-force query.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithChunks sets the number of substrings of the indexed backend.
func WithChunks(n int) Option {
	return func(o *options) {
		o.chunks = n
	}
}

// WithK sets the per-query retrieval budget of the indexed backend.
func WithK(k int) Option {
	return func(o *options) {
		o.k = k
	}
}

// WithResultCapacity sets the initial device result buffer size.
func WithResultCapacity(n int) Option {
	return func(o *options) {
		o.resultCapacity = n
	}
}

// WithOverflowPolicy sets how the GPU backend handles a full result buffer.
func WithOverflowPolicy(p gpu.OverflowPolicy) Option {
	return func(o *options) {
		o.overflow = p
	}
}

// WithDevice runs GPU kernels on d.
func WithDevice(d *device.Device) Option {
	return func(o *options) {
		o.device = d
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o options) validate() error {
	switch {
	case o.workers < 0:
		return &ErrInvalidOption{Option: "workers", Value: o.workers}
	case o.chunks < 0:
		return &ErrInvalidOption{Option: "chunks", Value: o.chunks}
	case o.k < 0:
		return &ErrInvalidOption{Option: "k", Value: o.k}
	case o.resultCapacity < 0:
		return &ErrInvalidOption{Option: "result_capacity", Value: o.resultCapacity}
	case o.overflow < gpu.OverflowGrow || o.overflow > gpu.OverflowReject:
		return &ErrInvalidOption{Option: "overflow", Value: o.overflow}
	}
	return nil
}
