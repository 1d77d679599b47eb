// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("hashes/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	src := source.Blob(store, "population.txt.zst")
//
// # Features
//
//   - Range reads for partial fetches
//   - Parallel whole-object download through the transfer manager
//   - Configurable key prefix
package s3
