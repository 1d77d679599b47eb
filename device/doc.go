// Package device provides a GPU-style data-parallel facility over
// device-resident buffers.
//
// The device is emulated on the host: buffers live in process memory,
// accounted against a resource.Controller budget, and kernels run on a
// fixed number of lanes backed by goroutines. The primitives follow the
// usual GPU vocabulary: Upload, Alloc, SortUnique, CopyIf and Download.
//
// Buffers are not safe for concurrent mutation. Callers serialize access
// to any buffer they reuse across launches.
package device
