// Package hashsearch provides threshold-radius Hamming search over a
// population of fixed-width integer hashes.
//
// A Searcher wraps one of three interchangeable backends behind the
// hashstore.Store contract:
//
//   - BackendBruteForce scans the whole population for every query. Exact,
//     duplicates preserved.
//   - BackendGPU filters a deduplicated copy of the population on an
//     emulated data-parallel device. Exact unless configured to truncate,
//     duplicates collapse.
//   - BackendIndexed retrieves the K nearest codes from a multi-index hash
//     table and filters them by threshold. Bounded by K.
//
// # Quick Start
//
//	ctx := context.Background()
//	s, _ := hashsearch.New[uint64](hashsearch.BackendBruteForce)
//	_, _ = s.Load(ctx, source.File("hashes.txt"))
//	res, _ := s.Search(ctx, 0x1f2e3d4c5b6a7988, 8)
//	for _, m := range res.Matches {
//	    fmt.Println(m.Hash, m.Distance)
//	}
//
// Sources decompress zstd, gzip and lz4 input transparently and may live on
// local disk, in memory, S3 or MinIO; see package source and blobstore.
//
// # Ordering
//
// Matches are ordered by ascending distance, then ascending code. Batch
// results are ordered by query code; equal queries keep their input order.
// The threshold is inclusive.
//
// # Observability
//
// Searchers log through a *Logger (log/slog) and report to a
// MetricsCollector. metrics/prometheus provides a Prometheus collector.
//
//	s, _ := hashsearch.New[uint64](hashsearch.BackendIndexed,
//	    hashsearch.WithLogger(hashsearch.NewJSONLogger(slog.LevelInfo)),
//	    hashsearch.WithK(64),
//	)
package hashsearch
