// Package mih implements multi-index hashing for k-nearest-neighbour search
// in Hamming space.
//
// Codes of B bits are split into m contiguous substrings. Each substring
// has its own hash table mapping the substring value to a posting list of
// population positions. A query probes every table at growing substring
// radius; by the pigeonhole principle, after probing radius s in tables
// 0..j every code within distance s*m+j of the query has been seen, which
// bounds the search once K such codes exist.
//
// The interface mirrors a flat batch API: codes and queries are packed
// little-endian byte buffers, results come back in caller-owned flat
// buffers, and population indices are one-based with 0 marking an
// unused slot.
package mih
