package mbtiles

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/tilebound/tileview/pkg/errors"
)

// Catalog exposes the MBTiles files in a directory as named tile
// sources. Stores open lazily on first use and stay open for the life
// of the catalog.
type Catalog struct {
	dir string

	mu     sync.Mutex
	stores map[string]*Store
}

// NewCatalog creates a catalog over dir. The directory is scanned per
// call, so files added while the server runs become visible without a
// restart.
func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir, stores: make(map[string]*Store)}
}

// Sources lists the source identifiers available in the directory,
// sorted. A source identifier is the file name without the .mbtiles
// extension.
func (c *Catalog) Sources() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := strings.CutSuffix(e.Name(), ".mbtiles"); ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Store returns the opened store for a source identifier.
func (c *Catalog) Store(id string) (*Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.stores[id]; ok {
		return s, nil
	}

	path := filepath.Join(c.dir, id+".mbtiles")
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeSourceNotFound, "no source %q in catalog", id)
	}
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	c.stores[id] = s
	return s, nil
}

// Close closes every opened store.
func (c *Catalog) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.stores {
		_ = s.Close()
	}
	c.stores = make(map[string]*Store)
}
