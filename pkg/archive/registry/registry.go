// Package registry deduplicates open archive handles by key and backs
// the tile-protocol intercept.
//
// The registry is the single shared mutable structure of the viewer
// core: at most one [archive.Archive] is live per key, style composition
// and the serving layer borrow read-only references, and the registry
// alone owns handle lifecycles. It is also the lookup table the
// tile-protocol intercept consults to resolve "tilearchive://key"
// references during rendering.
package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/tilebound/tileview/pkg/archive"
	"github.com/tilebound/tileview/pkg/errors"
)

// Opener constructs an archive handle when no live handle exists for a
// key. It is invoked outside the registry lock and may block on network
// or file reads.
type Opener func(ctx context.Context) (*archive.Archive, error)

// entry tracks one key's handle, including in-flight construction.
// ready is closed once a (or err) is final.
type entry struct {
	ready chan struct{}
	a     *archive.Archive
	err   error
}

// Registry deduplicates archive handles by key.
//
// All methods are safe for concurrent use. A handle is published only
// after its opener has returned successfully; concurrent callers for the
// same key share one opener invocation and one resulting handle.
type Registry struct {
	mu      sync.Mutex
	handles map[string]*entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{handles: make(map[string]*entry)}
}

// GetOrCreate returns the live handle for key, invoking open only when
// no handle exists. Two calls with the same key yield the same handle
// instance while that handle is alive, regardless of the openers passed.
//
// A failed open is surfaced to the caller and leaves no entry behind, so
// a later call (the user re-selecting the source) retries cleanly.
func (r *Registry) GetOrCreate(ctx context.Context, key string, open Opener) (*archive.Archive, error) {
	r.mu.Lock()
	if e, ok := r.handles[key]; ok {
		r.mu.Unlock()
		select {
		case <-e.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if e.err != nil {
			return nil, e.err
		}
		return e.a, nil
	}

	e := &entry{ready: make(chan struct{})}
	r.handles[key] = e
	r.mu.Unlock()

	a, err := open(ctx)
	if err == nil && a == nil {
		err = errors.New(errors.ErrCodeInternal, "opener for %q returned no handle", key)
	}
	e.a, e.err = a, err

	r.mu.Lock()
	if err != nil && r.handles[key] == e {
		// Never publish failed opens; the key stays retryable. If a
		// Replace displaced this entry mid-open, its handle stays.
		delete(r.handles, key)
	}
	r.mu.Unlock()
	close(e.ready)

	return a, err
}

// Replace explicitly installs handle under key, closing any displaced
// handle. Used when a dropped local file supersedes a previously
// registered archive; the new handle is visible to Resolve immediately.
func (r *Registry) Replace(key string, a *archive.Archive) {
	e := &entry{ready: make(chan struct{}), a: a}
	close(e.ready)

	r.mu.Lock()
	old, ok := r.handles[key]
	r.handles[key] = e
	r.mu.Unlock()

	if ok {
		closeEntry(old)
	}
}

// Remove releases the handle for key, if any.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	e, ok := r.handles[key]
	delete(r.handles, key)
	r.mu.Unlock()

	if ok {
		closeEntry(e)
	}
}

// Resolve returns the published handle for key. Handles still being
// opened, or whose open failed, are not visible.
func (r *Registry) Resolve(key string) (*archive.Archive, bool) {
	r.mu.Lock()
	e, ok := r.handles[key]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-e.ready:
	default:
		return nil, false
	}
	if e.err != nil {
		return nil, false
	}
	return e.a, true
}

// Keys returns the keys of all published handles, sorted.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.handles))
	for k, e := range r.handles {
		select {
		case <-e.ready:
			if e.err == nil {
				keys = append(keys, k)
			}
		default:
		}
	}
	sort.Strings(keys)
	return keys
}

// Close releases every handle and empties the registry.
func (r *Registry) Close() {
	r.mu.Lock()
	handles := r.handles
	r.handles = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range handles {
		closeEntry(e)
	}
}

// closeEntry releases a detached entry's handle. An entry whose open is
// still in flight is closed in the background once the opener returns;
// the caller never waits on it.
func closeEntry(e *entry) {
	select {
	case <-e.ready:
		if e.err == nil && e.a != nil {
			_ = e.a.Close()
		}
	default:
		go func() {
			<-e.ready
			if e.err == nil && e.a != nil {
				_ = e.a.Close()
			}
		}()
	}
}
