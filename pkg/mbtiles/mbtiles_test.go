package mbtiles

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

// writeFixture creates a minimal MBTiles file with one tile at 2/1/1
// (XYZ), which is row 2 in TMS order.
func writeFixture(t *testing.T, path string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE metadata (name TEXT, value TEXT)`,
		`CREATE TABLE tiles (zoom_level INTEGER, tile_column INTEGER, tile_row INTEGER, tile_data BLOB)`,
		`INSERT INTO metadata VALUES ('name', 'fixture')`,
		`INSERT INTO metadata VALUES ('format', 'pbf')`,
		`INSERT INTO metadata VALUES ('minzoom', '0')`,
		`INSERT INTO metadata VALUES ('maxzoom', '2')`,
		`INSERT INTO metadata VALUES ('bounds', '-74,40,-73,41')`,
		`INSERT INTO tiles VALUES (2, 1, 2, x'6d7674')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("fixture stmt %q: %v", stmt, err)
		}
	}
}

func TestStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.mbtiles")
	writeFixture(t, path)

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if s.Name() != "fixture" {
		t.Errorf("Name = %q", s.Name())
	}
	if s.Format() != "pbf" {
		t.Errorf("Format = %q", s.Format())
	}
	if min, max := s.ZoomRange(); min != 0 || max != 2 {
		t.Errorf("ZoomRange = [%d, %d], want [0, 2]", min, max)
	}

	b, ok := s.Bound()
	if !ok {
		t.Fatal("Bound not parsed")
	}
	if b.Min[0] != -74 || b.Max[1] != 41 {
		t.Errorf("Bound = %+v", b)
	}
}

func TestStore_TileYFlip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.mbtiles")
	writeFixture(t, path)

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	// The fixture stores TMS row 2 at zoom 2, which is XYZ y=1.
	data, err := s.Tile(ctx, 2, 1, 1)
	if err != nil {
		t.Fatalf("Tile failed: %v", err)
	}
	if string(data) != "mvt" {
		t.Errorf("Tile = %q, want %q", data, "mvt")
	}

	if _, err := s.Tile(ctx, 2, 1, 2); !errors.Is(err, ErrTileNotFound) {
		t.Errorf("missing tile error = %v, want ErrTileNotFound", err)
	}
}

func TestOpen_NotMBTiles(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "absent.mbtiles")); err == nil {
		t.Error("Open succeeded on a missing file")
	}
}

func TestCatalog(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "osm.mbtiles"))
	writeFixture(t, filepath.Join(dir, "buildings.mbtiles"))

	c := NewCatalog(dir)
	defer c.Close()

	ids, err := c.Sources()
	if err != nil {
		t.Fatalf("Sources failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "buildings" || ids[1] != "osm" {
		t.Errorf("Sources = %v, want [buildings osm]", ids)
	}

	s1, err := c.Store("osm")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	s2, err := c.Store("osm")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if s1 != s2 {
		t.Error("Store opened the same source twice")
	}

	if _, err := c.Store("ghost"); err == nil {
		t.Error("Store succeeded for an absent source")
	}
}
