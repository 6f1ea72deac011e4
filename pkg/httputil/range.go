package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const rangeTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when the requested resource doesn't exist on the host.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrRangeUnsupported is returned when a host answers a Range request
	// with a full-body 200 instead of a 206 partial response.
	ErrRangeUnsupported = errors.New("byte ranges not supported by host")
)

// RangeClient issues byte-range GET requests against archive hosts.
//
// Every read supplies an explicit Range header and requires a 206 partial
// response; hosts that ignore the header fail with [ErrRangeUnsupported]
// rather than silently streaming whole archives. 5xx responses are wrapped
// as [RetryableError] so callers can use [Retry].
//
// The zero value is not usable; construct with [NewRangeClient].
type RangeClient struct {
	http *http.Client
}

// NewRangeClient creates a RangeClient with a standard request timeout.
func NewRangeClient() *RangeClient {
	return &RangeClient{http: &http.Client{Timeout: rangeTimeout}}
}

// ReadRange fetches length bytes starting at offset from url.
//
// The response must be a 206 with exactly the requested byte count. A 404
// maps to [ErrNotFound], 5xx responses to a retryable [ErrNetwork], and a
// 200 full-body answer to [ErrRangeUnsupported].
func (c *RangeClient) ReadRange(ctx context.Context, url string, offset, length int64) ([]byte, error) {
	if length <= 0 {
		return nil, fmt.Errorf("invalid range length %d", length)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusPartialContent:
		// expected
	case resp.StatusCode == http.StatusOK:
		return nil, ErrRangeUnsupported
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 500:
		return nil, &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)}
	default:
		return nil, fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, length))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	if int64(len(data)) != length {
		return nil, fmt.Errorf("%w: short range read: got %d bytes, want %d", ErrNetwork, len(data), length)
	}
	return data, nil
}

// Size reports the total byte length of the resource at url.
//
// It issues a one-byte range request and parses the Content-Range total,
// avoiding a HEAD round trip that some static hosts reject.
func (c *RangeClient) Size(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", "bytes=0-0")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1))

	switch {
	case resp.StatusCode == http.StatusPartialContent:
		return parseContentRangeTotal(resp.Header.Get("Content-Range"))
	case resp.StatusCode == http.StatusOK:
		if resp.ContentLength >= 0 {
			return resp.ContentLength, ErrRangeUnsupported
		}
		return 0, ErrRangeUnsupported
	case resp.StatusCode == http.StatusNotFound:
		return 0, ErrNotFound
	default:
		return 0, fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	}
}

// parseContentRangeTotal extracts the total length from a Content-Range
// header of the form "bytes 0-0/12345".
func parseContentRangeTotal(header string) (int64, error) {
	idx := strings.LastIndex(header, "/")
	if idx < 0 || idx == len(header)-1 {
		return 0, fmt.Errorf("malformed Content-Range %q", header)
	}
	total, err := strconv.ParseInt(header[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed Content-Range %q: %v", header, err)
	}
	return total, nil
}
