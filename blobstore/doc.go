// Package blobstore provides read access to the immutable files a
// population is loaded from.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, memory-mapped reads
//   - MemoryStore: in-memory blobs for tests and embedding
//   - s3.Store: Amazon S3 with range reads and parallel whole-object download
//   - minio.Store: MinIO and other S3-compatible storage
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	}
//
// Blobs that can stream a byte range without buffering should implement
// RangeReader; stores that can fetch a whole object faster than by
// sequential ranges should implement Downloader.
package blobstore
