package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/mgaillard/hashsearch/blobstore"
	"github.com/mgaillard/hashsearch/hashstore"
	"github.com/mgaillard/hashsearch/resource"
)

// ErrConsumed is returned when reopening a single-use source.
var ErrConsumed = errors.New("source: reader already consumed")

// Options configures a source.
type Options struct {
	// Compression selects the framing. The default detects it.
	Compression Compression
	// Controller throttles reads with its IO budget.
	Controller *resource.Controller
}

// Option configures a source.
type Option func(*Options)

// WithCompression forces the framing instead of detecting it.
func WithCompression(c Compression) Option {
	return func(o *Options) { o.Compression = c }
}

// WithController throttles reads with rc.
func WithController(rc *resource.Controller) Option {
	return func(o *Options) { o.Controller = rc }
}

func applyOptions(optFns []Option) Options {
	var o Options
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// wrap applies throttling then decompression on top of raw.
func wrap(ctx context.Context, raw io.ReadCloser, o Options) (io.ReadCloser, error) {
	var r io.Reader = raw
	if o.Controller != nil {
		r = resource.NewRateLimitedReader(ctx, r, o.Controller)
	}

	dec, err := decompress(r, o.Compression)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}
	return &stacked{Reader: dec, closers: []io.Closer{dec, raw}}, nil
}

type stacked struct {
	io.Reader
	closers []io.Closer
}

func (s *stacked) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

type fileSource struct {
	path string
	opts Options
}

// File returns a source reading the file at path.
func File(path string, optFns ...Option) hashstore.Source {
	return &fileSource{path: path, opts: applyOptions(optFns)}
}

func (s *fileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	return wrap(ctx, f, s.opts)
}

func (s *fileSource) String() string { return s.path }

type blobSource struct {
	store blobstore.BlobStore
	name  string
	opts  Options
}

// Blob returns a source reading a blob. Stores implementing
// blobstore.Downloader fetch the blob in one call.
func Blob(store blobstore.BlobStore, name string, optFns ...Option) hashstore.Source {
	return &blobSource{store: store, name: name, opts: applyOptions(optFns)}
}

func (s *blobSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if d, ok := s.store.(blobstore.Downloader); ok {
		data, err := d.Download(ctx, s.name)
		if err != nil {
			return nil, err
		}
		return wrap(ctx, io.NopCloser(bytes.NewReader(data)), s.opts)
	}

	b, err := s.store.Open(ctx, s.name)
	if err != nil {
		return nil, err
	}
	rc, err := blobstore.NewReader(ctx, b)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return wrap(ctx, rc, s.opts)
}

func (s *blobSource) String() string { return fmt.Sprintf("blob:%s", s.name) }

type bytesSource struct {
	name string
	data []byte
	opts Options
}

// Bytes returns a source over data. It can be opened repeatedly.
func Bytes(name string, data []byte, optFns ...Option) hashstore.Source {
	return &bytesSource{name: name, data: data, opts: applyOptions(optFns)}
}

func (s *bytesSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return wrap(ctx, io.NopCloser(bytes.NewReader(s.data)), s.opts)
}

func (s *bytesSource) String() string { return s.name }

type readerSource struct {
	name string
	r    io.Reader
	used atomic.Bool
	opts Options
}

// Reader returns a single-use source over r.
func Reader(name string, r io.Reader, optFns ...Option) hashstore.Source {
	return &readerSource{name: name, r: r, opts: applyOptions(optFns)}
}

func (s *readerSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.used.Swap(true) {
		return nil, ErrConsumed
	}
	return wrap(ctx, io.NopCloser(s.r), s.opts)
}

func (s *readerSource) String() string { return s.name }

type wrappedSource struct {
	src  hashstore.Source
	opts Options
}

// With decorates an arbitrary source with decompression and throttling.
func With(src hashstore.Source, optFns ...Option) hashstore.Source {
	return &wrappedSource{src: src, opts: applyOptions(optFns)}
}

func (s *wrappedSource) Open(ctx context.Context) (io.ReadCloser, error) {
	rc, err := s.src.Open(ctx)
	if err != nil {
		return nil, err
	}
	return wrap(ctx, rc, s.opts)
}

func (s *wrappedSource) String() string { return s.src.String() }

// Read decodes the codes of src, decorated with optFns.
func Read[H hashstore.Code](ctx context.Context, src hashstore.Source, optFns ...Option) ([]H, error) {
	if len(optFns) > 0 {
		src = With(src, optFns...)
	}
	return hashstore.ReadCodes[H](ctx, src)
}
