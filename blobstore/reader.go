package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
)

const defaultChunkSize = 1 << 20

// NewReader returns a sequential reader over the whole blob. Closing the
// reader closes the blob.
func NewReader(ctx context.Context, b Blob) (io.ReadCloser, error) {
	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		return &blobReader{r: bytes.NewReader(data), blob: b}, nil
	}
	if rr, ok := b.(RangeReader); ok && b.Size() > 0 {
		rc, err := rr.ReadRange(ctx, 0, b.Size())
		if err != nil {
			return nil, err
		}
		return &blobReader{r: rc, body: rc, blob: b}, nil
	}
	return &blobReader{r: &chunkReader{ctx: ctx, blob: b}, blob: b}, nil
}

type blobReader struct {
	r    io.Reader
	body io.Closer
	blob Blob
}

func (r *blobReader) Read(p []byte) (int, error) { return r.r.Read(p) }

func (r *blobReader) Close() error {
	var err error
	if r.body != nil {
		err = r.body.Close()
	}
	return errors.Join(err, r.blob.Close())
}

// chunkReader reads a blob sequentially through ReadAt.
type chunkReader struct {
	ctx  context.Context
	blob Blob
	off  int64
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.off >= r.blob.Size() {
		return 0, io.EOF
	}
	if len(p) > defaultChunkSize {
		p = p[:defaultChunkSize]
	}
	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	if errors.Is(err, io.EOF) && n > 0 {
		err = nil
	}
	return n, err
}
