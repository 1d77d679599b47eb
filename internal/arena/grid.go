package arena

// Grid is a rows × stride matrix backed by one contiguous slice.
type Grid[T any] struct {
	data   []T
	rows   int
	stride int
}

// NewGrid allocates a zeroed grid.
func NewGrid[T any](rows, stride int) *Grid[T] {
	g := &Grid[T]{}
	g.Reset(rows, stride)
	return g
}

// Reset reshapes the grid and zeroes it, reusing the backing slice when it
// is large enough.
func (g *Grid[T]) Reset(rows, stride int) {
	if rows < 0 || stride < 0 {
		panic("arena: negative grid dimension")
	}
	n := rows * stride
	if cap(g.data) < n {
		g.data = make([]T, n)
	} else {
		g.data = g.data[:n]
		clear(g.data)
	}
	g.rows = rows
	g.stride = stride
}

// Row returns row i. The slice aliases the grid.
func (g *Grid[T]) Row(i int) []T {
	off := i * g.stride
	return g.data[off : off+g.stride : off+g.stride]
}

// Flat returns the whole backing buffer in row-major order.
func (g *Grid[T]) Flat() []T { return g.data }

// Rows returns the number of rows.
func (g *Grid[T]) Rows() int { return g.rows }

// Stride returns the row length.
func (g *Grid[T]) Stride() int { return g.stride }
