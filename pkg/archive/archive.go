package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tilebound/tileview/pkg/errors"
)

// DroppedKeyPrefix marks synthetic keys assigned to user-dropped local
// archives. Dropped keys never collide with remote URLs, so a dropped
// file is never deduplicated against a remote archive of a similar name.
const DroppedKeyPrefix = "dropped:"

// NewDroppedKey returns a fresh synthetic key for a user-dropped archive.
func NewDroppedKey() string {
	return DroppedKeyPrefix + uuid.NewString()
}

// IsDroppedKey reports whether key identifies a user-dropped archive.
func IsDroppedKey(key string) bool {
	return strings.HasPrefix(key, DroppedKeyPrefix)
}

// Archive is an opened tile archive bound to a stable key.
//
// Header and Metadata are memoizing: the first call may suspend on a
// byte fetch, later calls return immediately. Both results — including
// errors — are cached for the lifetime of the handle.
type Archive struct {
	key string
	src ByteSource

	headerOnce sync.Once
	header     Header
	headerErr  error

	metaOnce sync.Once
	meta     Metadata
	metaErr  error
}

// New wraps src as an archive handle under key. No bytes are read;
// verification happens on Open or on first Header/Metadata call.
func New(key string, src ByteSource) *Archive {
	return &Archive{key: key, src: src}
}

// Open wraps src under key and verifies the source is readable with a
// single size probe. This is the construction step after which a handle
// may be published to a registry: it catches unreachable hosts and
// hosts without byte-range support before any metadata fetch begins.
func Open(ctx context.Context, key string, src ByteSource) (*Archive, error) {
	size, err := src.Size(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArchive, err, "archive %q unreadable", key)
	}
	if size < HeaderSize {
		return nil, errors.New(errors.ErrCodeInvalidArchive, "archive %q too small: %d bytes", key, size)
	}
	return New(key, src), nil
}

// OpenURL opens a remote archive read over ranged HTTP.
func OpenURL(ctx context.Context, url string) (*Archive, error) {
	return Open(ctx, url, NewHTTPSource(url, nil))
}

// OpenFile opens a local archive file under a fresh dropped key.
func OpenFile(ctx context.Context, path string) (*Archive, error) {
	src, err := NewFileSource(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArchive, err, "open %s", path)
	}
	return Open(ctx, NewDroppedKey(), src)
}

// Key returns the archive's stable identity.
func (a *Archive) Key() string { return a.key }

// Source returns the underlying byte source. The serving layer uses it
// to answer raw byte-range requests from the tile-protocol intercept.
func (a *Archive) Source() ByteSource { return a.src }

// Header returns the archive's parsed header, fetching it on first call.
func (a *Archive) Header(ctx context.Context) (Header, error) {
	a.headerOnce.Do(func() {
		data, err := a.src.ReadRange(ctx, 0, HeaderSize)
		if err != nil {
			a.headerErr = errors.Wrap(errors.ErrCodeNetwork, err, "read header of %q", a.key)
			return
		}
		a.header, a.headerErr = ParseHeader(data)
	})
	return a.header, a.headerErr
}

// Metadata returns the archive's metadata document, fetching it on first
// call. An archive with an empty metadata section yields an empty
// document, not an error.
func (a *Archive) Metadata(ctx context.Context) (Metadata, error) {
	a.metaOnce.Do(func() {
		a.meta, a.metaErr = a.fetchMetadata(ctx)
	})
	return a.meta, a.metaErr
}

// Close releases the underlying byte source.
func (a *Archive) Close() error {
	return a.src.Close()
}

func (a *Archive) fetchMetadata(ctx context.Context) (Metadata, error) {
	h, err := a.Header(ctx)
	if err != nil {
		return nil, err
	}
	if h.MetadataLength == 0 {
		return Metadata{}, nil
	}

	data, err := a.src.ReadRange(ctx, int64(h.MetadataOffset), int64(h.MetadataLength))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "read metadata of %q", a.key)
	}

	if h.InternalCompression == CompressionGzip {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("metadata of %q: %w", a.key, err)
		}
		defer zr.Close()
		if data, err = io.ReadAll(zr); err != nil {
			return nil, fmt.Errorf("metadata of %q: %w", a.key, err)
		}
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("metadata of %q: %w", a.key, err)
	}
	return meta, nil
}
