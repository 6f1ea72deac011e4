// Package archive opens packaged tile archives and exposes their header
// and metadata.
//
// An [Archive] wraps one opened archive, identified by a stable key: the
// URL string for remote archives, or a synthetic "dropped:" key for a
// user-supplied local file. Bytes are read through a [ByteSource], which
// abstracts over ranged HTTP ([HTTPSource]), local files ([FileSource])
// and in-memory buffers ([MemorySource]); the archive layer is agnostic
// to which.
//
// Header and metadata retrieval are lazy, idempotent and memoizing: the
// first call fetches and parses bytes, subsequent calls return the cached
// result immediately. A failed fetch is also memoized — retry policy
// belongs to the caller, typically by re-opening the source.
//
// Tile directory and tile payload decoding are out of scope here; the
// serving layer reads raw byte ranges through the same [ByteSource].
package archive
