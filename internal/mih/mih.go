package mih

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"runtime"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"
)

// MaxSubstringBits bounds the width of a single substring.
const MaxSubstringBits = 32

var (
	ErrInvalidBits   = errors.New("mih: bits must be in [1, 64]")
	ErrInvalidChunks = errors.New("mih: chunks must be in [1, bits]")
	ErrChunkTooWide  = fmt.Errorf("mih: substrings wider than %d bits", MaxSubstringBits)
	ErrInvalidK      = errors.New("mih: k must be positive")
	ErrCodeWidth     = errors.New("mih: code byte width does not match bit width")
	ErrShortBuffer   = errors.New("mih: buffer too short")
	ErrTooLarge      = errors.New("mih: population exceeds 2^32-1 codes")
)

// Stats describes the work done for one query.
type Stats struct {
	// Candidates is the number of distinct codes whose full distance was computed.
	Candidates int
	// Lookups is the number of bucket probes.
	Lookups int
	// Radius is the last substring radius probed.
	Radius int
}

type substring struct {
	offset int
	width  int
	mask   uint64
}

// Index is a multi-index hash table over a static population.
// Populate and BatchQuery may be called concurrently; queries observe
// either the old or the new population.
type Index struct {
	bits  int
	k     int
	subs  []substring
	mu    sync.RWMutex
	codes []uint64
	// tables[j] maps a substring value to the positions holding it.
	tables []map[uint64]*roaring.Bitmap
}

// New creates an index over bits-wide codes split into chunks substrings.
// The first bits%chunks substrings are one bit wider than the rest.
func New(bits, chunks int) (*Index, error) {
	if bits < 1 || bits > 64 {
		return nil, ErrInvalidBits
	}
	if chunks < 1 || chunks > bits {
		return nil, fmt.Errorf("%w: got %d for %d bits", ErrInvalidChunks, chunks, bits)
	}

	base, extra := bits/chunks, bits%chunks
	if base+min(extra, 1) > MaxSubstringBits {
		return nil, ErrChunkTooWide
	}

	subs := make([]substring, chunks)
	off := 0
	for j := range subs {
		w := base
		if j < extra {
			w++
		}
		subs[j] = substring{offset: off, width: w, mask: 1<<uint(w) - 1}
		off += w
	}

	return &Index{
		bits:   bits,
		k:      1,
		subs:   subs,
		tables: make([]map[uint64]*roaring.Bitmap, chunks),
	}, nil
}

// SetK sets the number of neighbours retrieved per query.
func (x *Index) SetK(k int) error {
	if k <= 0 {
		return ErrInvalidK
	}
	x.mu.Lock()
	x.k = k
	x.mu.Unlock()
	return nil
}

// K returns the retrieval budget.
func (x *Index) K() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.k
}

// Bits returns the code width.
func (x *Index) Bits() int { return x.bits }

// Chunks returns the number of substrings.
func (x *Index) Chunks() int { return len(x.subs) }

// SubstringWidths returns the width of every substring.
func (x *Index) SubstringWidths() []int {
	w := make([]int, len(x.subs))
	for j, s := range x.subs {
		w[j] = s.width
	}
	return w
}

// Len returns the population size.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.codes)
}

// Populate replaces the population with n packed codes of codeBytes bytes each.
func (x *Index) Populate(codes []byte, n, codeBytes int) error {
	if codeBytes != (x.bits+7)/8 {
		return fmt.Errorf("%w: %d bytes for %d bits", ErrCodeWidth, codeBytes, x.bits)
	}
	if n < 0 || len(codes) < n*codeBytes {
		return ErrShortBuffer
	}
	if uint64(n) > math.MaxUint32 {
		return ErrTooLarge
	}

	decoded := make([]uint64, n)
	tables := make([]map[uint64]*roaring.Bitmap, len(x.subs))
	for j := range tables {
		tables[j] = make(map[uint64]*roaring.Bitmap)
	}

	for i := 0; i < n; i++ {
		c := decode(codes[i*codeBytes : (i+1)*codeBytes])
		decoded[i] = c
		for j, s := range x.subs {
			key := (c >> uint(s.offset)) & s.mask
			bm, ok := tables[j][key]
			if !ok {
				bm = roaring.New()
				tables[j][key] = bm
			}
			bm.Add(uint32(i))
		}
	}
	for _, t := range tables {
		for _, bm := range t {
			bm.RunOptimize()
		}
	}

	x.mu.Lock()
	x.codes = decoded
	x.tables = tables
	x.mu.Unlock()
	return nil
}

// BatchQuery runs nq packed queries.
//
// results must hold nq*K slots and receives, per query, up to K one-based
// population indices ordered by distance then position; unused slots are 0.
// counts must hold nq*(bits+1) slots and receives, per query, the number of
// returned indices at each distance. stats may be nil or hold nq entries.
func (x *Index) BatchQuery(results, counts []uint32, stats []Stats, queries []byte, nq, codeBytes int) error {
	if codeBytes != (x.bits+7)/8 {
		return fmt.Errorf("%w: %d bytes for %d bits", ErrCodeWidth, codeBytes, x.bits)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	k := x.k
	stride := x.bits + 1
	switch {
	case nq < 0, len(queries) < nq*codeBytes:
		return fmt.Errorf("%w: queries", ErrShortBuffer)
	case len(results) < nq*k:
		return fmt.Errorf("%w: results", ErrShortBuffer)
	case len(counts) < nq*stride:
		return fmt.Errorf("%w: counts", ErrShortBuffer)
	case stats != nil && len(stats) < nq:
		return fmt.Errorf("%w: stats", ErrShortBuffer)
	}

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < nq; i++ {
		g.Go(func() error {
			q := decode(queries[i*codeBytes : (i+1)*codeBytes])
			st := x.query(q, k, results[i*k:(i+1)*k], counts[i*stride:(i+1)*stride])
			if stats != nil {
				stats[i] = st
			}
			return nil
		})
	}
	return g.Wait()
}

func (x *Index) query(q uint64, k int, out, counts []uint32) Stats {
	clear(out)
	clear(counts)

	var st Stats
	n := len(x.codes)
	if n == 0 {
		return st
	}

	seen := bitset.New(uint(n))
	found := make([][]uint32, x.bits+1)

	maxWidth := x.subs[0].width
	m := len(x.subs)

search:
	for s := 0; s <= maxWidth; s++ {
		st.Radius = s
		for j, sub := range x.subs {
			if s <= sub.width {
				qsub := (q >> uint(sub.offset)) & sub.mask
				table := x.tables[j]
				forEachAtDistance(sub.width, s, func(flip uint64) {
					st.Lookups++
					bm, ok := table[qsub^flip]
					if !ok {
						return
					}
					it := bm.Iterator()
					for it.HasNext() {
						p := it.Next()
						if seen.Test(uint(p)) {
							continue
						}
						seen.Set(uint(p))
						st.Candidates++
						d := bits.OnesCount64(q ^ x.codes[p])
						found[d] = append(found[d], p)
					}
				})
				if st.Candidates == n {
					break search
				}
			}

			// Every code within s*m+j of q has been seen.
			if certain(found, s*m+j) >= k {
				break search
			}
		}
	}

	slot := 0
	for d, ps := range found {
		if slot == k {
			break
		}
		sort.Slice(ps, func(a, b int) bool { return ps[a] < ps[b] })
		for _, p := range ps {
			if slot == k {
				break
			}
			out[slot] = p + 1
			counts[d]++
			slot++
		}
	}
	return st
}

func certain(found [][]uint32, radius int) int {
	if radius >= len(found) {
		radius = len(found) - 1
	}
	n := 0
	for d := 0; d <= radius; d++ {
		n += len(found[d])
	}
	return n
}

// forEachAtDistance calls fn with every width-bit mask of exactly s set bits,
// in increasing order.
func forEachAtDistance(width, s int, fn func(uint64)) {
	if s == 0 {
		fn(0)
		return
	}
	limit := uint64(1) << uint(width)
	for v := uint64(1)<<uint(s) - 1; v < limit; {
		fn(v)
		// Gosper's hack: next integer with the same popcount.
		c := v & -v
		r := v + c
		v = (((r ^ v) >> 2) / c) | r
	}
}

func decode(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
