// Package distance provides distance functions over hash codes.
//
// Two families exist for every metric: Func runs on the host and may use
// hardware popcount through math/bits; Kernel is the device-side
// formulation evaluated inside device filters and is restricted to plain
// integer arithmetic.
//
// # Supported Metrics
//
//   - MetricHamming: number of differing bits
//
// # Usage
//
//	d := distance.Hamming[uint64](a, b)
//	fn, _ := distance.Provider[uint64](distance.MetricHamming)
package distance
