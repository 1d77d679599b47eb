package distance

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHamming(t *testing.T) {
	tests := []struct {
		name     string
		a, b     uint64
		expected int
	}{
		{"Identical", 0xdeadbeef, 0xdeadbeef, 0},
		{"OneBit", 0b000, 0b001, 1},
		{"ThreeBits", 0b000, 0b111, 3},
		{"AllBits", 0, ^uint64(0), 64},
		{"HighBit", 1 << 63, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Hamming(tt.a, tt.b))
			assert.Equal(t, tt.expected, Hamming(tt.b, tt.a))
			assert.Equal(t, tt.expected, HammingKernel(tt.a, tt.b))
		})
	}
}

func TestHammingNarrowCodes(t *testing.T) {
	assert.Equal(t, 8, Hamming[uint8](0x00, 0xff))
	assert.Equal(t, 8, HammingKernel[uint8](0x00, 0xff))
	assert.Equal(t, 16, Hamming[uint16](0x0000, 0xffff))
	assert.Equal(t, 2, HammingKernel[uint32](0x80000001, 0))
}

func TestKernelMatchesHost(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 10000; i++ {
		a, b := r.Uint64(), r.Uint64()
		require.Equal(t, Hamming(a, b), HammingKernel(a, b))
	}
}

func TestProvider(t *testing.T) {
	fn, err := Provider[uint64](MetricHamming)
	require.NoError(t, err)
	assert.Equal(t, 2, fn(0b1100, 0b0000))

	k, err := KernelProvider[uint64](MetricHamming)
	require.NoError(t, err)
	assert.Equal(t, 2, k(0b1100, 0b0000))

	_, err = Provider[uint64](Metric(99))
	assert.Error(t, err)
	_, err = KernelProvider[uint64](Metric(99))
	assert.Error(t, err)

	assert.Equal(t, "Hamming", MetricHamming.String())
	assert.Equal(t, "Unknown(99)", Metric(99).String())
}
