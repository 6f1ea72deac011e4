package archive

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tilebound/tileview/pkg/httputil"
)

// ByteSource supplies random-access reads over raw archive bytes.
//
// Implementations must be safe for concurrent use. ReadRange returns
// exactly length bytes or an error; short reads are errors.
type ByteSource interface {
	// ReadRange reads length bytes starting at offset.
	ReadRange(ctx context.Context, offset, length int64) ([]byte, error)

	// Size reports the total byte length of the archive.
	Size(ctx context.Context) (int64, error)

	// Close releases any resources held by the source.
	Close() error
}

// HTTPSource reads archive bytes over ranged HTTP GET requests.
type HTTPSource struct {
	url    string
	client *httputil.RangeClient
}

// NewHTTPSource creates a ByteSource backed by ranged GETs against url.
// Pass nil to use a default client.
func NewHTTPSource(url string, client *httputil.RangeClient) *HTTPSource {
	if client == nil {
		client = httputil.NewRangeClient()
	}
	return &HTTPSource{url: url, client: client}
}

// URL returns the archive URL this source reads from.
func (s *HTTPSource) URL() string { return s.url }

// ReadRange fetches bytes [offset, offset+length) from the remote host.
// Transient failures (connection errors, 5xx) are retried with backoff.
func (s *HTTPSource) ReadRange(ctx context.Context, offset, length int64) ([]byte, error) {
	var data []byte
	err := httputil.Retry(ctx, 3, 200*time.Millisecond, func() error {
		var err error
		data, err = s.client.ReadRange(ctx, s.url, offset, length)
		return err
	})
	return data, err
}

// Size reports the remote archive's total length via a one-byte range probe.
func (s *HTTPSource) Size(ctx context.Context) (int64, error) {
	var size int64
	err := httputil.Retry(ctx, 3, 200*time.Millisecond, func() error {
		var err error
		size, err = s.client.Size(ctx, s.url)
		return err
	})
	return size, err
}

// Close is a no-op; HTTP connections are pooled by the client.
func (s *HTTPSource) Close() error { return nil }

// FileSource reads archive bytes from a local file.
type FileSource struct {
	f    *os.File
	size int64
}

// NewFileSource opens path for random-access reads.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &FileSource{f: f, size: info.Size()}, nil
}

// ReadRange reads bytes [offset, offset+length) from the file.
func (s *FileSource) ReadRange(ctx context.Context, offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > s.size {
		return nil, fmt.Errorf("range [%d, %d) outside archive of %d bytes", offset, offset+length, s.size)
	}
	buf := make([]byte, length)
	if _, err := s.f.ReadAt(buf, offset); err != nil {
		return nil, err
	}
	return buf, nil
}

// Size reports the file length captured at open time.
func (s *FileSource) Size(ctx context.Context) (int64, error) { return s.size, nil }

// Close closes the underlying file.
func (s *FileSource) Close() error { return s.f.Close() }

// MemorySource reads archive bytes from an in-memory buffer, typically a
// file the user dragged into the viewer.
type MemorySource struct {
	data []byte
}

// NewMemorySource wraps data without copying.
func NewMemorySource(data []byte) *MemorySource {
	return &MemorySource{data: data}
}

// ReadRange returns a copy of bytes [offset, offset+length).
func (s *MemorySource) ReadRange(ctx context.Context, offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > int64(len(s.data)) {
		return nil, fmt.Errorf("range [%d, %d) outside archive of %d bytes", offset, offset+length, len(s.data))
	}
	out := make([]byte, length)
	copy(out, s.data[offset:offset+length])
	return out, nil
}

// Size reports the buffer length.
func (s *MemorySource) Size(ctx context.Context) (int64, error) { return int64(len(s.data)), nil }

// Close is a no-op.
func (s *MemorySource) Close() error { return nil }

var (
	_ ByteSource = (*HTTPSource)(nil)
	_ ByteSource = (*FileSource)(nil)
	_ ByteSource = (*MemorySource)(nil)
)
