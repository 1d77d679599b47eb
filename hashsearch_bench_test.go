package hashsearch_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/mgaillard/hashsearch"
	"github.com/mgaillard/hashsearch/source"
	"github.com/mgaillard/hashsearch/testutil"
)

// Run benchmarks: go test -bench=BenchmarkSearch -run=^$ .
func BenchmarkSearch(b *testing.B) {
	ctx := context.Background()

	sizes := []int{10_000, 100_000}
	if testing.Short() {
		sizes = []int{10_000}
	}

	backends := []hashsearch.Backend{
		hashsearch.BackendBruteForce,
		hashsearch.BackendGPU,
		hashsearch.BackendIndexed,
	}

	for _, n := range sizes {
		rng := testutil.NewRNG(42)
		population := rng.Codes64(n)

		var buf bytes.Buffer
		if err := testutil.WriteCodes(&buf, population); err != nil {
			b.Fatal(err)
		}
		data := buf.Bytes()

		queries := make([]uint64, 256)
		for i := range queries {
			queries[i] = rng.Perturb(population[rng.IntN(n)], 3, 64)
		}

		for _, backend := range backends {
			b.Run(fmt.Sprintf("%s/n=%d", backend, n), func(b *testing.B) {
				s, err := hashsearch.New[uint64](backend)
				if err != nil {
					b.Fatal(err)
				}
				defer s.Close()

				if _, err := s.Load(ctx, source.Bytes("bench", data)); err != nil {
					b.Fatal(err)
				}

				b.Run("single", func(b *testing.B) {
					b.ReportAllocs()
					b.ResetTimer()

					for i := 0; i < b.N; i++ {
						if _, err := s.Search(ctx, queries[i%len(queries)], 4); err != nil {
							b.Fatal(err)
						}
					}

					b.StopTimer()
					b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "qps")
				})

				b.Run("batch", func(b *testing.B) {
					b.ReportAllocs()
					b.ResetTimer()

					for i := 0; i < b.N; i++ {
						if _, err := s.BatchSearch(ctx, queries, 4); err != nil {
							b.Fatal(err)
						}
					}

					b.StopTimer()
					b.ReportMetric(float64(b.N*len(queries))/b.Elapsed().Seconds(), "qps")
				})
			})
		}
	}
}

func BenchmarkLoad(b *testing.B) {
	ctx := context.Background()
	rng := testutil.NewRNG(7)

	var buf bytes.Buffer
	if err := testutil.WriteCodes(&buf, rng.Codes64(50_000)); err != nil {
		b.Fatal(err)
	}
	data := buf.Bytes()

	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s, err := hashsearch.New[uint64](hashsearch.BackendIndexed)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := s.Load(ctx, source.Bytes("bench", data)); err != nil {
			b.Fatal(err)
		}
		_ = s.Close()
	}
}
