package bruteforce

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgaillard/hashsearch/hashstore"
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
	return s
}

type brokenSource struct{}

func (brokenSource) Open(context.Context) (io.ReadCloser, error) {
	return nil, errors.New("connection refused")
}

func (brokenSource) String() string { return "broken" }

func TestSearch(t *testing.T) {
	s := loaded(t, []uint8{0b111, 0b001, 0b000})

	tests := []struct {
		name      string
		query     uint8
		threshold int
		want      []hashstore.Match[uint8]
	}{
		{"exact", 0b000, 0, []hashstore.Match[uint8]{{Distance: 0, Hash: 0b000}}},
		{"inclusive", 0b000, 1, []hashstore.Match[uint8]{{Distance: 0, Hash: 0b000}, {Distance: 1, Hash: 0b001}}},
		{"all", 0b000, 3, []hashstore.Match[uint8]{{Distance: 0, Hash: 0b000}, {Distance: 1, Hash: 0b001}, {Distance: 3, Hash: 0b111}}},
		{"tie broken by code", 0b011, 1, []hashstore.Match[uint8]{{Distance: 1, Hash: 0b001}, {Distance: 1, Hash: 0b111}}},
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

func TestDuplicatesPreserved(t *testing.T) {
	s := loaded(t, []uint32{9, 9, 8})

	res, err := s.Search(context.Background(), 9, 0)
	require.NoError(t, err)
	assert.Len(t, res.Matches, 2)
	assert.Equal(t, []uint32{8, 9, 9}, s.Entries())
	assert.Equal(t, hashstore.Info{Backend: "bruteforce", Exact: true}, s.Info())
}

func TestAgreesWithGroundTruth(t *testing.T) {
	rng := testutil.NewRNG(4711)
	population := rng.Codes64(5000)
	population = append(population, rng.Neighbours(population[0], 100, 8)...)

	s := loaded(t, population, func(o *Options[uint64]) {
		o.Workers = 4
		o.MinPartition = 128
	})

	for _, q := range population[:25] {
		for _, threshold := range []int{0, 3, 8, 20} {
			res, err := s.Search(context.Background(), q, threshold)
			require.NoError(t, err)
			assert.Equal(t, testutil.BruteForce(population, q, threshold), res.Matches)
		}
	}
}

func TestBatchSearch(t *testing.T) {
	s := loaded(t, []uint8{0b000, 0b001, 0b111})

	results, err := s.BatchSearch(context.Background(), []uint8{0b111, 0b000, 0b111}, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, uint8(0b000), results[0].Query)
	assert.Equal(t, uint8(0b111), results[1].Query)
	assert.Equal(t, uint8(0b111), results[2].Query)
	assert.Equal(t, results[1], results[2])

	_, err = s.BatchSearch(context.Background(), []uint8{1}, -1)
	assert.ErrorIs(t, err, hashstore.ErrInvalidThreshold)
}

func TestLoad(t *testing.T) {
	t.Run("unavailable source", func(t *testing.T) {
		s := New[uint64]()
		_, err := s.Load(context.Background(), brokenSource{})
		require.ErrorIs(t, err, hashstore.ErrSourceUnavailable)
		assert.Equal(t, hashstore.StateUnloaded, s.State())
		assert.Empty(t, s.Entries())
	})

	t.Run("malformed token", func(t *testing.T) {
		s := New[uint64]()
		_, err := s.Load(context.Background(), source.Bytes("bad", []byte("1 2 -3")))
		var perr *hashstore.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 2, perr.Offset)
		assert.Equal(t, "-3", perr.Token)
		assert.Equal(t, hashstore.StateUnloaded, s.State())
	})

	t.Run("load once", func(t *testing.T) {
		s := New[uint64]()
		info, err := s.Load(context.Background(), source.Bytes("a", []byte("3\n1\n1\n")))
		require.NoError(t, err)
		assert.Equal(t, "a", info.Source)
		assert.Equal(t, 3, info.Count)
		assert.Equal(t, 2, info.Unique)
		assert.Equal(t, hashstore.StateLoaded, info.State)

		info, err = s.Load(context.Background(), source.Bytes("b", []byte("7")))
		assert.ErrorIs(t, err, hashstore.ErrAlreadyLoaded)
		assert.Equal(t, 3, info.Count)
		assert.Equal(t, []uint64{1, 1, 3}, s.Entries())
	})

	t.Run("empty source", func(t *testing.T) {
		s := New[uint64]()
		info, err := s.Load(context.Background(), source.Bytes("empty", nil))
		require.NoError(t, err)
		assert.Zero(t, info.Count)
		assert.Equal(t, hashstore.StateLoaded, s.State())
	})
}

func TestUnloaded(t *testing.T) {
	s := New[uint64]()

	res, err := s.Search(context.Background(), 42, 64)
	require.NoError(t, err)
	assert.NotNil(t, res.Matches)
	assert.Empty(t, res.Matches)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Search(ctx, 42, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
