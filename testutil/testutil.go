package testutil

import (
	"io"
	"math"
	"math/bits"
	"math/rand/v2"
	"sync"

	"github.com/mgaillard/hashsearch/hashstore"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed uint64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewPCG(r.seed, r.seed^0x9e3779b97f4a7c15))
}

// Seed returns the initial seed.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// IntN returns a non-negative pseudo-random number in [0,n).
func (r *RNG) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Codes64 generates n uniformly random 64-bit codes.
func (r *RNG) Codes64(n int) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	codes := make([]uint64, n)
	for i := range codes {
		codes[i] = r.rand.Uint64()
	}
	return codes
}

// Codes generates n uniformly random codes of type H.
func Codes[H hashstore.Code](r *RNG, n int) []H {
	r.mu.Lock()
	defer r.mu.Unlock()

	codes := make([]H, n)
	for i := range codes {
		codes[i] = H(r.rand.Uint64())
	}
	return codes
}

// Perturb flips exactly flips distinct bits among the low width bits of code.
func (r *RNG) Perturb(code uint64, flips, width int) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.perturbLocked(code, flips, width)
}

func (r *RNG) perturbLocked(code uint64, flips, width int) uint64 {
	flips = min(flips, width)
	for _, b := range r.rand.Perm(width)[:flips] {
		code ^= 1 << uint(b)
	}
	return code
}

// Neighbours generates n codes within maxFlips bits of center.
func (r *RNG) Neighbours(center uint64, n, maxFlips int) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]uint64, n)
	for i := range out {
		out[i] = r.perturbLocked(center, r.rand.IntN(maxFlips+1), 64)
	}
	return out
}

// Zipf returns a Zipfian-distributed value in [0, n).
// P(k) ∝ 1/k^s where s is the skew parameter.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// DuplicatedCodes generates n codes drawn from unique distinct values with a
// Zipfian skew, so a few codes repeat many times.
func (r *RNG) DuplicatedCodes(n, unique int, s float64) []uint64 {
	values := r.Codes64(unique)

	r.mu.Lock()
	defer r.mu.Unlock()

	codes := make([]uint64, n)
	for i := range codes {
		codes[i] = values[r.zipfLocked(unique, s)]
	}
	return codes
}

// BruteForce returns every member of population within threshold of query,
// sorted by distance then code. Duplicates are preserved.
func BruteForce[H hashstore.Code](population []H, query H, threshold int) []hashstore.Match[H] {
	matches := []hashstore.Match[H]{}
	for _, c := range population {
		if d := bits.OnesCount64(uint64(query ^ c)); d <= threshold {
			matches = append(matches, hashstore.Match[H]{Distance: d, Hash: c})
		}
	}
	hashstore.SortMatches(matches)
	return matches
}

// Recall is the fraction of distinct codes in groundTruth that approximate
// also contains.
func Recall[H hashstore.Code](groundTruth, approximate []hashstore.Match[H]) float64 {
	if len(groundTruth) == 0 {
		return 1.0
	}

	found := make(map[H]struct{}, len(approximate))
	for _, m := range approximate {
		found[m.Hash] = struct{}{}
	}

	truth := make(map[H]struct{}, len(groundTruth))
	hits := 0
	for _, m := range groundTruth {
		if _, dup := truth[m.Hash]; dup {
			continue
		}
		truth[m.Hash] = struct{}{}
		if _, ok := found[m.Hash]; ok {
			hits++
		}
	}

	return float64(hits) / float64(len(truth))
}

// WriteCodes writes codes to w, one decimal code per line.
func WriteCodes[H hashstore.Code](w io.Writer, codes []H) error {
	return hashstore.WriteCodes(w, codes)
}
