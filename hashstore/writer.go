package hashstore

import (
	"bufio"
	"io"
	"strconv"
)

// WriteCodes writes codes to w in the format ReadCodes accepts, one decimal
// code per line.
func WriteCodes[H Code](w io.Writer, codes []H) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	for _, c := range codes {
		buf = strconv.AppendUint(buf[:0], uint64(c), 10)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}
