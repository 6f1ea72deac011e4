package archive

import (
	"encoding/binary"
	"fmt"

	"github.com/paulmach/orb"
)

// Archive container layout. The header is a fixed 127-byte block at
// offset 0; the metadata section is a JSON document at the offset the
// header declares, optionally gzip-compressed. This layout is a stable
// external contract shared with the data pipeline that writes archives.
const (
	// HeaderSize is the fixed byte length of the archive header.
	HeaderSize = 127

	headerMagic   = "PMTiles"
	formatVersion = 3
)

// Compression identifies how an archive section is compressed.
type Compression uint8

// Known compression values for archive sections.
const (
	CompressionUnknown Compression = 0
	CompressionNone    Compression = 1
	CompressionGzip    Compression = 2
)

// Header is the parsed fixed-layout archive header.
//
// Spatial bounds are stored E7-encoded (degrees × 10^7) on the wire and
// exposed as degrees here. Section offsets are absolute byte positions
// within the archive.
type Header struct {
	// Section layout
	RootOffset     uint64
	RootLength     uint64
	MetadataOffset uint64
	MetadataLength uint64
	LeafOffset     uint64
	LeafLength     uint64
	TileDataOffset uint64
	TileDataLength uint64

	InternalCompression Compression
	TileCompression     Compression
	TileType            uint8

	// Zoom range
	MinZoom uint8
	MaxZoom uint8

	// Spatial bounds in degrees
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64

	CenterZoom uint8
	CenterLon  float64
	CenterLat  float64
}

// Bound returns the archive's spatial extent as an orb.Bound, suitable
// for computing a fit-to-bounds viewport.
func (h Header) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{h.MinLon, h.MinLat},
		Max: orb.Point{h.MaxLon, h.MaxLat},
	}
}

// Center returns the archive's declared center point.
func (h Header) Center() orb.Point {
	return orb.Point{h.CenterLon, h.CenterLat}
}

// ParseHeader decodes the fixed 127-byte header block.
//
// It validates the magic bytes and format version; anything else is
// taken at face value, since the writer side owns the invariants.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("header too short: %d bytes, want %d", len(data), HeaderSize)
	}
	if string(data[0:len(headerMagic)]) != headerMagic {
		return Header{}, fmt.Errorf("bad archive magic %q", data[0:len(headerMagic)])
	}
	if data[7] != formatVersion {
		return Header{}, fmt.Errorf("unsupported archive version %d", data[7])
	}

	le := binary.LittleEndian
	h := Header{
		RootOffset:          le.Uint64(data[8:16]),
		RootLength:          le.Uint64(data[16:24]),
		MetadataOffset:      le.Uint64(data[24:32]),
		MetadataLength:      le.Uint64(data[32:40]),
		LeafOffset:          le.Uint64(data[40:48]),
		LeafLength:          le.Uint64(data[48:56]),
		TileDataOffset:      le.Uint64(data[56:64]),
		TileDataLength:      le.Uint64(data[64:72]),
		InternalCompression: Compression(data[97]),
		TileCompression:     Compression(data[98]),
		TileType:            data[99],
		MinZoom:             data[100],
		MaxZoom:             data[101],
		MinLon:              e7(data[102:106]),
		MinLat:              e7(data[106:110]),
		MaxLon:              e7(data[110:114]),
		MaxLat:              e7(data[114:118]),
		CenterZoom:          data[118],
		CenterLon:           e7(data[119:123]),
		CenterLat:           e7(data[123:127]),
	}
	return h, nil
}

func e7(b []byte) float64 {
	return float64(int32(binary.LittleEndian.Uint32(b))) / 1e7
}
