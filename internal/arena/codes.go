package arena

import (
	"github.com/mgaillard/hashsearch/hashstore"
)

// PackCodes appends codes to dst in little-endian order, Bytes[H] bytes per
// code, and returns the extended buffer.
func PackCodes[H hashstore.Code](dst []byte, codes []H) []byte {
	width := hashstore.Bytes[H]()
	off := len(dst)
	dst = grow(dst, len(codes)*width)
	for _, c := range codes {
		v := uint64(c)
		for b := 0; b < width; b++ {
			dst[off+b] = byte(v >> (8 * b))
		}
		off += width
	}
	return dst
}

// UnpackCode decodes the i-th code of a buffer produced by PackCodes.
func UnpackCode[H hashstore.Code](buf []byte, i int) H {
	width := hashstore.Bytes[H]()
	return H(DecodeUint(buf[i*width : (i+1)*width]))
}

// DecodeUint decodes up to eight little-endian bytes.
func DecodeUint(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func grow(b []byte, n int) []byte {
	l := len(b)
	if cap(b)-l >= n {
		return b[:l+n]
	}
	nb := make([]byte, l+n)
	copy(nb, b)
	return nb
}
