// Package arena provides owned contiguous buffers addressed by row, and
// packing of hash codes into flat byte buffers.
//
// A Grid replaces per-row allocations with one backing slice and a fixed
// stride, so a batch of per-query rows can be handed to a consumer as a
// single flat buffer and read back row by row.
package arena
