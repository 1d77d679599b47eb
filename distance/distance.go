package distance

import (
	"fmt"
	"math/bits"

	"github.com/mgaillard/hashsearch/hashstore"
)

// Metric identifies a distance metric over hash codes.
type Metric int

const (
	MetricHamming Metric = iota
)

func (m Metric) String() string {
	switch m {
	case MetricHamming:
		return "Hamming"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Func computes a non-negative distance between two codes on the host.
// It must be symmetric and zero only for identical codes.
type Func[H hashstore.Code] func(a, b H) int

// Kernel is the device-side equivalent of Func.
type Kernel[H hashstore.Code] func(a, b H) int

// Hamming returns the number of differing bits between a and b.
func Hamming[H hashstore.Code](a, b H) int {
	return bits.OnesCount64(uint64(a ^ b))
}

// HammingKernel counts differing bits with a branch-free SWAR reduction.
func HammingKernel[H hashstore.Code](a, b H) int {
	x := uint64(a ^ b)
	x -= (x >> 1) & 0x5555555555555555
	x = (x & 0x3333333333333333) + ((x >> 2) & 0x3333333333333333)
	x = (x + (x >> 4)) & 0x0f0f0f0f0f0f0f0f
	return int((x * 0x0101010101010101) >> 56)
}

// Provider returns the host distance function for the given metric.
func Provider[H hashstore.Code](m Metric) (Func[H], error) {
	switch m {
	case MetricHamming:
		return Hamming[H], nil
	default:
		return nil, fmt.Errorf("distance: unsupported metric %v", m)
	}
}

// KernelProvider returns the device distance kernel for the given metric.
func KernelProvider[H hashstore.Code](m Metric) (Kernel[H], error) {
	switch m {
	case MetricHamming:
		return HammingKernel[H], nil
	default:
		return nil, fmt.Errorf("distance: unsupported metric %v", m)
	}
}
