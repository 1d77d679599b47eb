package device

import "fmt"

// Buffer is a device-resident array of T with a fixed capacity.
type Buffer[T any] struct {
	dev  *Device
	data []T
	n    int
}

// Alloc reserves an empty buffer of capacity n.
func Alloc[T any](d *Device, n int) (*Buffer[T], error) {
	if n < 0 {
		return nil, fmt.Errorf("device: negative capacity %d", n)
	}
	if err := d.reserve(int64(n) * sizeOf[T]()); err != nil {
		return nil, err
	}
	return &Buffer[T]{dev: d, data: make([]T, n)}, nil
}

// Upload copies host into a new buffer.
func Upload[T any](d *Device, host []T) (*Buffer[T], error) {
	b, err := Alloc[T](d, len(host))
	if err != nil {
		return nil, err
	}
	b.n = copy(b.data, host)
	return b, nil
}

// Download copies the first n elements of b to host memory.
func Download[T any](b *Buffer[T], n int) ([]T, error) {
	if b.data == nil {
		return nil, ErrFreed
	}
	n = min(n, b.n)
	out := make([]T, n)
	copy(out, b.data[:n])
	return out, nil
}

// Len returns the number of valid elements.
func (b *Buffer[T]) Len() int { return b.n }

// Cap returns the buffer capacity.
func (b *Buffer[T]) Cap() int { return len(b.data) }

// Resize reallocates the buffer to capacity n, keeping the leading
// elements that fit.
func (b *Buffer[T]) Resize(n int) error {
	if b.data == nil {
		return ErrFreed
	}
	if n == len(b.data) {
		return nil
	}
	delta := int64(n-len(b.data)) * sizeOf[T]()
	if delta > 0 {
		if err := b.dev.reserve(delta); err != nil {
			return err
		}
	} else {
		b.dev.release(-delta)
	}

	data := make([]T, n)
	b.n = copy(data, b.data[:b.n])
	b.data = data
	return nil
}

// Free releases the buffer. Free is idempotent.
func (b *Buffer[T]) Free() {
	if b.data == nil {
		return
	}
	b.dev.release(int64(len(b.data)) * sizeOf[T]())
	b.data = nil
	b.n = 0
}
