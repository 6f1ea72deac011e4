// Package httputil provides HTTP utilities shared by the archive and
// endpoint layers.
//
// # Overview
//
// Three pieces of infrastructure live here:
//
//   - [Cache]: file-based caching of JSON-marshalable values (archive
//     metadata, catalog responses)
//   - [Retry]: automatic retry with exponential backoff for transient
//     failures
//   - [RangeClient]: byte-range HTTP reads against archive hosts
//
// # Caching
//
// [Cache] stores values in the filesystem (~/.cache/tileview/ by
// default) with a configurable TTL. Archive metadata rarely changes, so
// caching it avoids re-fetching the same bytes on every session.
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	meta := cache.Namespace("meta:")
//
// # Retry
//
// [Retry] re-runs an operation when it fails with a [RetryableError]
// (network errors, 5xx responses). Other errors return immediately.
//
// # Range reads
//
// [RangeClient] issues Range-header GET requests and insists on partial
// responses. A host that ignores the Range header is reported as
// [ErrRangeUnsupported] so callers can fall back to another endpoint
// class instead of downloading whole archives.
package httputil
