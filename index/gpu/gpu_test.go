package gpu

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgaillard/hashsearch/device"
	"github.com/mgaillard/hashsearch/hashstore"
	"github.com/mgaillard/hashsearch/resource"
	"github.com/mgaillard/hashsearch/source"
	"github.com/mgaillard/hashsearch/testutil"
)

func codesSource[H hashstore.Code](t *testing.T, codes []H) hashstore.Source {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, testutil.WriteCodes(&buf, codes))
	return source.Bytes("test", buf.Bytes())
}

func loaded[H hashstore.Code](t *testing.T, codes []H, optFns ...func(o *Options[H])) *Store[H] {
	t.Helper()
	s := New(optFns...)
	_, err := s.Load(context.Background(), codesSource(t, codes))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSearch(t *testing.T) {
	s := loaded(t, []uint8{0b000, 0b001, 0b111})

	tests := []struct {
		name      string
		query     uint8
		threshold int
		want      []hashstore.Match[uint8]
	}{
		{"exact", 0b000, 0, []hashstore.Match[uint8]{{Distance: 0, Hash: 0b000}}},
		{"inclusive", 0b000, 1, []hashstore.Match[uint8]{{Distance: 0, Hash: 0b000}, {Distance: 1, Hash: 0b001}}},
		{"all", 0b000, 3, []hashstore.Match[uint8]{{Distance: 0, Hash: 0b000}, {Distance: 1, Hash: 0b001}, {Distance: 3, Hash: 0b111}}},
		{"none", 0b11110000, 3, []hashstore.Match[uint8]{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Search(context.Background(), tt.query, tt.threshold)
			require.NoError(t, err)
			assert.Equal(t, tt.query, res.Query)
			assert.Equal(t, tt.want, res.Matches)
			assert.False(t, res.Truncated)
		})
	}
}

func TestDuplicatesCollapse(t *testing.T) {
	s := loaded(t, []uint16{5, 5, 5, 6})

	res, err := s.Search(context.Background(), 5, 0)
	require.NoError(t, err)
	assert.Equal(t, []hashstore.Match[uint16]{{Distance: 0, Hash: 5}}, res.Matches)

	assert.Equal(t, []uint16{5, 5, 5, 6}, s.Entries(), "host copy keeps duplicates")
	assert.True(t, s.Info().Deduplicated)
	assert.Equal(t, "gpu", s.Info().Backend)
}

func TestOverflowPolicies(t *testing.T) {
	population := []uint8{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}

	t.Run("grow", func(t *testing.T) {
		s := loaded(t, population, func(o *Options[uint8]) { o.ResultCapacity = 2 })

		res, err := s.Search(context.Background(), 0, 8)
		require.NoError(t, err)
		assert.Len(t, res.Matches, 10)
		assert.False(t, res.Truncated)
		assert.True(t, s.Info().Exact)
	})

	t.Run("truncate", func(t *testing.T) {
		s := loaded(t, population, func(o *Options[uint8]) {
			o.ResultCapacity = 2
			o.Overflow = OverflowTruncate
		})

		res, err := s.Search(context.Background(), 0, 8)
		require.NoError(t, err)
		assert.True(t, res.Truncated)
		assert.Equal(t, []hashstore.Match[uint8]{{Distance: 0, Hash: 0}, {Distance: 1, Hash: 1}}, res.Matches)
		assert.False(t, s.Info().Exact)
	})

	t.Run("reject", func(t *testing.T) {
		s := loaded(t, population, func(o *Options[uint8]) {
			o.ResultCapacity = 2
			o.Overflow = OverflowReject
		})

		_, err := s.Search(context.Background(), 0, 8)
		require.ErrorIs(t, err, hashstore.ErrCapacityExceeded)
		var cerr *hashstore.CapacityError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, 2, cerr.Capacity)
		assert.Equal(t, 10, cerr.Selected)

		res, err := s.Search(context.Background(), 0, 0)
		require.NoError(t, err)
		assert.Len(t, res.Matches, 1)
	})
}

func TestMemoryBudget(t *testing.T) {
	t.Run("population exceeds budget", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 16})
		dev := device.New(func(o *device.Options) { o.Controller = rc })
		s := New(func(o *Options[uint64]) { o.Device = dev })

		_, err := s.Load(context.Background(), codesSource(t, []uint64{1, 2, 3}))
		require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
		assert.Equal(t, hashstore.StateUnloaded, s.State())
		assert.Empty(t, s.Entries())
		assert.Zero(t, rc.MemoryUsage())
	})

	t.Run("result buffer exceeds budget", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 64})
		dev := device.New(func(o *device.Options) { o.Controller = rc })
		s := New(func(o *Options[uint64]) { o.Device = dev })

		_, err := s.Load(context.Background(), codesSource(t, []uint64{1, 2, 3}))
		require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
		assert.Equal(t, hashstore.StateUnloaded, s.State())
		assert.Zero(t, rc.MemoryUsage())
	})

	t.Run("grow exceeds budget", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 16})
		dev := device.New(func(o *device.Options) { o.Controller = rc })
		s := loaded(t, []uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, func(o *Options[uint8]) {
			o.Device = dev
			o.ResultCapacity = 2
		})

		_, err := s.Search(context.Background(), 0, 8)
		require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	})

	t.Run("close releases memory", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 4096})
		dev := device.New(func(o *device.Options) { o.Controller = rc })
		s := loaded(t, []uint64{1, 1, 2}, func(o *Options[uint64]) { o.Device = dev })

		assert.Equal(t, int64(2*8+128*8), rc.MemoryUsage(), "device copy holds unique codes only")
		require.NoError(t, s.Close())
		assert.Zero(t, rc.MemoryUsage())
		require.NoError(t, s.Close())
	})
}

func TestAgreesWithBruteForce(t *testing.T) {
	rng := testutil.NewRNG(4711)
	population := rng.Codes64(2000)
	population = append(population, rng.Neighbours(population[0], 50, 6)...)

	s := loaded(t, population, func(o *Options[uint64]) {
		o.Device = device.New(func(o *device.Options) {
			o.Lanes = 4
			o.MinLaneWork = 64
		})
	})

	for _, q := range population[:20] {
		for _, threshold := range []int{0, 4, 8, 24} {
			res, err := s.Search(context.Background(), q, threshold)
			require.NoError(t, err)
			want := testutil.BruteForce(uniq(population), q, threshold)
			assert.Equal(t, want, res.Matches)
		}
	}
}

func TestBatchSearch(t *testing.T) {
	s := loaded(t, []uint8{0b000, 0b001, 0b111})

	results, err := s.BatchSearch(context.Background(), []uint8{0b111, 0b000, 0b001}, 1)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, want := range []uint8{0b000, 0b001, 0b111} {
		assert.Equal(t, want, results[i].Query)
		single, err := s.Search(context.Background(), want, 1)
		require.NoError(t, err)
		assert.Equal(t, single, results[i])
	}

	_, err = s.BatchSearch(context.Background(), []uint8{0}, -1)
	assert.ErrorIs(t, err, hashstore.ErrInvalidThreshold)
}

func TestLifecycle(t *testing.T) {
	s := New[uint64]()
	assert.Equal(t, hashstore.StateUnloaded, s.State())

	res, err := s.Search(context.Background(), 42, 64)
	require.NoError(t, err)
	assert.NotNil(t, res.Matches)
	assert.Empty(t, res.Matches)

	_, err = s.Search(context.Background(), 42, -1)
	assert.ErrorIs(t, err, hashstore.ErrInvalidThreshold)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Search(ctx, 42, 1)
	assert.ErrorIs(t, err, context.Canceled)

	info, err := s.Load(context.Background(), codesSource(t, []uint64{3, 1, 1}))
	require.NoError(t, err)
	assert.Equal(t, 3, info.Count)
	assert.Equal(t, 2, info.Unique)
	assert.Equal(t, hashstore.StateLoaded, s.State())

	_, err = s.Load(context.Background(), codesSource(t, []uint64{7}))
	assert.ErrorIs(t, err, hashstore.ErrAlreadyLoaded)
	assert.Equal(t, []uint64{1, 1, 3}, s.Entries())
	require.NoError(t, s.Close())
}

func TestParseOverflowPolicy(t *testing.T) {
	for _, p := range []OverflowPolicy{OverflowGrow, OverflowTruncate, OverflowReject} {
		got, err := ParseOverflowPolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	got, err := ParseOverflowPolicy("")
	require.NoError(t, err)
	assert.Equal(t, OverflowGrow, got)

	_, err = ParseOverflowPolicy("drop")
	assert.Error(t, err)
}

func uniq(codes []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(codes))
	out := make([]uint64, 0, len(codes))
	for _, c := range codes {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
