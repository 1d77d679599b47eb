package hashstore

import (
	"math/bits"
	"strconv"
)

// Code is a fixed-width binary hash code.
type Code interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Bits returns the width of H in bits.
func Bits[H Code]() int {
	var zero H
	return bits.Len64(uint64(^zero))
}

// Bytes returns the width of H in bytes.
func Bytes[H Code]() int {
	return Bits[H]() / 8
}

// ParseCode parses the decimal representation of a code.
func ParseCode[H Code](s string) (H, error) {
	v, err := strconv.ParseUint(s, 10, Bits[H]())
	if err != nil {
		return 0, err
	}
	return H(v), nil
}

// FormatCode returns the decimal representation of a code.
func FormatCode[H Code](c H) string {
	return strconv.FormatUint(uint64(c), 10)
}

// CountUnique returns the number of distinct values in a sorted slice.
func CountUnique[H Code](sorted []H) int {
	if len(sorted) == 0 {
		return 0
	}
	n := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			n++
		}
	}
	return n
}
