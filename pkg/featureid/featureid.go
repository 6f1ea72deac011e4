// Package featureid decodes the composite 64-bit feature identifiers
// carried in tile payloads.
//
// The encoding is a stable external wire contract shared with the data
// pipeline: the low 44 bits hold the feature's local id, the next 2 bits
// tag the feature kind, and the remaining high bits are unused and must
// be zero when encoding. Tag value 0 is reserved and means "not a tagged
// feature" — such ids carry no kind and their raw value is the id.
package featureid

import "fmt"

// Kind is the tagged feature variant.
type Kind uint8

// Feature kinds. None is the reserved tag 0.
const (
	None Kind = iota
	Node
	Way
	Relation
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Node:
		return "node"
	case Way:
		return "way"
	case Relation:
		return "relation"
	default:
		return "none"
	}
}

// Bit layout of a composite id.
const (
	localBits = 44
	kindBits  = 2

	localMask = uint64(1)<<localBits - 1
	kindMask  = uint64(1)<<kindBits - 1
)

// ID is a decoded composite feature identifier.
type ID struct {
	Kind  Kind
	Local uint64
}

// Decode splits a composite 64-bit value into kind and local id.
//
// A zero kind tag yields {None, raw}: untagged features keep their raw
// value as the local id so callers can still use it as a key.
func Decode(raw uint64) ID {
	kind := Kind(raw >> localBits & kindMask)
	if kind == None {
		return ID{Kind: None, Local: raw}
	}
	return ID{Kind: kind, Local: raw & localMask}
}

// Encode packs a kind and local id into the composite form.
// It returns an error when local overflows 44 bits.
func Encode(kind Kind, local uint64) (uint64, error) {
	if local > localMask {
		return 0, fmt.Errorf("local id %d overflows %d bits", local, localBits)
	}
	if kind == None {
		return local, nil
	}
	return uint64(kind)<<localBits | local, nil
}
