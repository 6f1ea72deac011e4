// Package mbtiles reads tile pyramids from MBTiles files, the SQLite
// container the dynamic tile host serves from.
//
// MBTiles stores tiles in TMS row order; this package flips the y
// coordinate so callers work in the XYZ scheme the viewer and the
// /mvt endpoint use throughout.
package mbtiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	_ "modernc.org/sqlite"

	apperrors "github.com/tilebound/tileview/pkg/errors"
)

// ErrTileNotFound is returned for coordinates with no stored tile.
var ErrTileNotFound = errors.New("tile not found")

// Store is one opened MBTiles file.
type Store struct {
	db   *sql.DB
	meta map[string]string
}

// Open opens the MBTiles file at path read-only and loads its metadata
// table.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.loadMetadata(); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidArchive, err, "not an mbtiles file: %s", path)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) loadMetadata() error {
	rows, err := s.db.Query(`SELECT name, value FROM metadata`)
	if err != nil {
		return err
	}
	defer rows.Close()

	s.meta = make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return err
		}
		s.meta[name] = value
	}
	return rows.Err()
}

// Metadata returns the value for a metadata key, reporting presence.
func (s *Store) Metadata(key string) (string, bool) {
	v, ok := s.meta[key]
	return v, ok
}

// Name returns the tileset's declared name, falling back to "".
func (s *Store) Name() string { return s.meta["name"] }

// Format returns the stored tile format ("pbf", "png", ...), falling
// back to "pbf" when undeclared.
func (s *Store) Format() string {
	if f, ok := s.meta["format"]; ok {
		return f
	}
	return "pbf"
}

// ZoomRange returns the declared min and max zoom. Undeclared bounds
// default to the full 0..22 range.
func (s *Store) ZoomRange() (min, max int) {
	min, max = 0, 22
	if v, err := strconv.Atoi(s.meta["minzoom"]); err == nil {
		min = v
	}
	if v, err := strconv.Atoi(s.meta["maxzoom"]); err == nil {
		max = v
	}
	return min, max
}

// Bound parses the declared "bounds" metadata (west,south,east,north)
// into an orb.Bound, reporting whether it is present and well-formed.
func (s *Store) Bound() (orb.Bound, bool) {
	parts := strings.Split(s.meta["bounds"], ",")
	if len(parts) != 4 {
		return orb.Bound{}, false
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, false
		}
		vals[i] = v
	}
	return orb.Bound{
		Min: orb.Point{vals[0], vals[1]},
		Max: orb.Point{vals[2], vals[3]},
	}, true
}

// Tile returns the payload for XYZ coordinates z/x/y, or
// [ErrTileNotFound] when the pyramid has no tile there.
func (s *Store) Tile(ctx context.Context, z, x, y int) ([]byte, error) {
	// XYZ → TMS row flip
	tmsY := (1 << z) - 1 - y

	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?`,
		z, x, tmsY).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTileNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
