// Package minio provides a BlobStore implementation using the MinIO client.
//
// Works with MinIO and other S3-compatible storage systems without AWS
// dependencies.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "hashes/")
//	src := source.Blob(store, "population.txt")
package minio
