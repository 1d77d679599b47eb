// Package mmap provides read-only memory-mapped file access.
//
// On Unix systems files are mapped with mmap(2) and access hints are passed
// through madvise(2). Elsewhere the file is read into memory and hints are
// ignored.
//
// Bytes must not be used after Close.
package mmap
