package device

import (
	"cmp"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Predicate selects elements in CopyIf.
type Predicate[T any] func(T) bool

// CopyResult reports the outcome of CopyIf.
type CopyResult struct {
	// Copied is the number of elements written to the destination.
	Copied int
	// Selected is the number of elements satisfying the predicate.
	// Selected > Copied means the destination was too small.
	Selected int
}

// Overflow reports whether selected elements did not fit.
func (r CopyResult) Overflow() bool { return r.Selected > r.Copied }

// SortUnique sorts b ascending, removes adjacent duplicates and shrinks the
// buffer to the remaining elements, releasing the freed device memory.
func SortUnique[T cmp.Ordered](b *Buffer[T]) error {
	if b.data == nil {
		return ErrFreed
	}
	live := b.data[:b.n]
	slices.Sort(live)
	b.n = len(slices.Compact(live))
	return b.Resize(b.n)
}

// CopyIf writes the elements of src satisfying pred to dst, preserving
// source order, up to dst.Cap(). Lanes evaluate pred on contiguous
// partitions of src in parallel.
func CopyIf[T any](src, dst *Buffer[T], pred Predicate[T]) (CopyResult, error) {
	if src.data == nil || dst.data == nil {
		return CopyResult{}, ErrFreed
	}
	if src.dev != dst.dev {
		return CopyResult{}, ErrForeignBuffer
	}

	parts := src.dev.partitions(src.n)
	selected := make([][]T, len(parts))

	g := new(errgroup.Group)
	for p, part := range parts {
		g.Go(func() error {
			var local []T
			for _, v := range src.data[part[0]:part[1]] {
				if pred(v) {
					local = append(local, v)
				}
			}
			selected[p] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CopyResult{}, err
	}

	var res CopyResult
	for _, local := range selected {
		res.Selected += len(local)
		if res.Copied < len(dst.data) {
			res.Copied += copy(dst.data[res.Copied:], local)
		}
	}
	dst.n = res.Copied
	return res, nil
}
