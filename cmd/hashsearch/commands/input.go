package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mgaillard/hashsearch/blobstore"
	"github.com/mgaillard/hashsearch/blobstore/minio"
	"github.com/mgaillard/hashsearch/blobstore/s3"
	"github.com/mgaillard/hashsearch/hashstore"
	"github.com/mgaillard/hashsearch/resource"
	"github.com/mgaillard/hashsearch/source"
)

// Location is a parsed --input value.
type Location struct {
	Scheme string // "file", "stdin", "s3" or "minio"
	Bucket string
	Key    string
}

// ParseLocation parses a local path, "-", s3://bucket/key or
// minio://bucket/key.
func ParseLocation(input string) (Location, error) {
	if input == "" {
		return Location{}, fmt.Errorf("input is required, use --input")
	}
	if input == "-" {
		return Location{Scheme: "stdin"}, nil
	}

	scheme, rest, ok := strings.Cut(input, "://")
	if !ok {
		return Location{Scheme: "file", Key: input}, nil
	}

	switch scheme {
	case "file":
		return Location{Scheme: "file", Key: rest}, nil
	case "s3", "minio":
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" || key == "" {
			return Location{}, fmt.Errorf("invalid %s location %q: want %s://bucket/key", scheme, input, scheme)
		}
		return Location{Scheme: scheme, Bucket: bucket, Key: key}, nil
	default:
		return Location{}, fmt.Errorf("unsupported input scheme %q", scheme)
	}
}

// OpenInput resolves input to a source. Local files are memory-mapped.
func OpenInput(ctx context.Context, cfg Config, input string, stdin io.Reader, rc *resource.Controller) (hashstore.Source, error) {
	loc, err := ParseLocation(input)
	if err != nil {
		return nil, err
	}
	compression, err := source.ParseCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}
	opts := []source.Option{
		source.WithCompression(compression),
		source.WithController(rc),
	}

	var store blobstore.BlobStore
	switch loc.Scheme {
	case "stdin":
		return source.Reader("stdin", stdin, opts...), nil
	case "file":
		dir, name := filepath.Split(loc.Key)
		store = blobstore.NewLocalStore(filepath.Clean(dir))
		loc.Key = name
	case "s3":
		store, err = s3.New(ctx, loc.Bucket,
			s3.WithRegion(cfg.S3.Region),
			s3.WithEndpoint(cfg.S3.Endpoint),
			s3.WithDownloadConcurrency(cfg.S3.DownloadConcurrency),
		)
	case "minio":
		store, err = minio.New(cfg.MinIO, loc.Bucket, "")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", loc.Scheme, err)
	}

	return &namedSource{Source: source.Blob(store, loc.Key, opts...), name: input}, nil
}

type namedSource struct {
	hashstore.Source
	name string
}

func (s *namedSource) String() string { return s.name }
