package device

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/mgaillard/hashsearch/resource"
)

var (
	// ErrFreed is returned when using a buffer after Free.
	ErrFreed = errors.New("device: buffer already freed")

	// ErrForeignBuffer is returned when buffers of different devices are mixed.
	ErrForeignBuffer = errors.New("device: buffers belong to different devices")
)

// Options configures a device.
type Options struct {
	// Name identifies the device in diagnostics.
	Name string

	// Lanes is the number of parallel workers per kernel launch.
	// If <= 0, runtime.GOMAXPROCS(0) is used.
	Lanes int

	// MinLaneWork is the smallest partition handed to a lane.
	MinLaneWork int

	// Controller accounts device memory. Nil means unlimited.
	Controller *resource.Controller
}

// DefaultOptions contains the default device configuration.
var DefaultOptions = Options{
	Name:        "emulated",
	MinLaneWork: 4096,
}

// Info describes a device.
type Info struct {
	Name     string
	Lanes    int
	Features []string
}

// Device is an emulated data-parallel device.
type Device struct {
	opts Options
}

// New creates a device.
func New(optFns ...func(o *Options)) *Device {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Lanes <= 0 {
		opts.Lanes = runtime.GOMAXPROCS(0)
	}
	if opts.MinLaneWork <= 0 {
		opts.MinLaneWork = 1
	}
	return &Device{opts: opts}
}

// Info reports the device configuration and host capabilities.
func (d *Device) Info() Info {
	return Info{
		Name:     d.opts.Name,
		Lanes:    d.opts.Lanes,
		Features: features(),
	}
}

// MemoryUsage returns the device memory currently reserved.
func (d *Device) MemoryUsage() int64 {
	return d.opts.Controller.MemoryUsage()
}

func (d *Device) reserve(bytes int64) error {
	if err := d.opts.Controller.TryAcquireMemory(bytes); err != nil {
		return fmt.Errorf("device %s: %w", d.opts.Name, err)
	}
	return nil
}

func (d *Device) release(bytes int64) {
	d.opts.Controller.ReleaseMemory(bytes)
}

// partitions splits n items into at most Lanes contiguous ranges.
func (d *Device) partitions(n int) [][2]int {
	if n == 0 {
		return nil
	}
	lanes := min(d.opts.Lanes, (n+d.opts.MinLaneWork-1)/d.opts.MinLaneWork)
	lanes = max(lanes, 1)
	size := (n + lanes - 1) / lanes

	parts := make([][2]int, 0, lanes)
	for lo := 0; lo < n; lo += size {
		parts = append(parts, [2]int{lo, min(lo+size, n)})
	}
	return parts
}

func sizeOf[T any]() int64 {
	var zero T
	return int64(unsafe.Sizeof(zero))
}
