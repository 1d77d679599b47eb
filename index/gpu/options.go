package gpu

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mgaillard/hashsearch/device"
	"github.com/mgaillard/hashsearch/distance"
	"github.com/mgaillard/hashsearch/hashstore"
)

// OverflowPolicy decides what happens when more codes pass the device
// filter than the result buffer holds.
type OverflowPolicy int

const (
	// OverflowGrow resizes the result buffer and filters again.
	OverflowGrow OverflowPolicy = iota
	// OverflowTruncate keeps the first ResultCapacity survivors and marks the
	// result truncated.
	OverflowTruncate
	// OverflowReject fails the query with a *hashstore.CapacityError.
	OverflowReject
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowGrow:
		return "grow"
	case OverflowTruncate:
		return "truncate"
	case OverflowReject:
		return "reject"
	default:
		return fmt.Sprintf("OverflowPolicy(%d)", int(p))
	}
}

// ParseOverflowPolicy parses a policy name.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(s) {
	case "", "grow":
		return OverflowGrow, nil
	case "truncate":
		return OverflowTruncate, nil
	case "reject":
		return OverflowReject, nil
	default:
		return 0, fmt.Errorf("gpu: unknown overflow policy %q", s)
	}
}

// Options contains configuration options for the device-filtered store.
type Options[H hashstore.Code] struct {
	// HostMetric rescores downloaded survivors.
	HostMetric distance.Func[H]

	// DeviceMetric is evaluated by the filter kernel.
	DeviceMetric distance.Kernel[H]

	// ResultCapacity is the initial size of the device result buffer.
	ResultCapacity int

	Overflow OverflowPolicy

	// Device runs the kernels. If nil, a default device is created.
	Device *device.Device

	Logger *slog.Logger
}

// DefaultOptions returns the default configuration.
func DefaultOptions[H hashstore.Code]() Options[H] {
	return Options[H]{
		HostMetric:     distance.Hamming[H],
		DeviceMetric:   distance.HammingKernel[H],
		ResultCapacity: 128,
		Overflow:       OverflowGrow,
	}
}
