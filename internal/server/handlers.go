package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb"

	"github.com/tilebound/tileview/internal/server/tilecache"
	"github.com/tilebound/tileview/pkg/archive"
	apperrors "github.com/tilebound/tileview/pkg/errors"
	"github.com/tilebound/tileview/pkg/mbtiles"
	"github.com/tilebound/tileview/pkg/style"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// catalogEntry is one tile source in the /catalog response.
type catalogEntry struct {
	ID      string      `json:"id"`
	Name    string      `json:"name,omitempty"`
	Format  string      `json:"format"`
	MinZoom int         `json:"minzoom"`
	MaxZoom int         `json:"maxzoom"`
	Bounds  *[4]float64 `json:"bounds,omitempty"`
	Tiles   string      `json:"tiles"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	ids, err := s.catalog.Sources()
	if err != nil {
		s.logger.Error("catalog scan failed", "err", err)
		http.Error(w, "catalog unavailable", http.StatusInternalServerError)
		return
	}

	entries := make([]catalogEntry, 0, len(ids))
	for _, id := range ids {
		st, err := s.catalog.Store(id)
		if err != nil {
			s.logger.Warn("skipping unreadable source", "source", id, "err", err)
			continue
		}
		minZoom, maxZoom := st.ZoomRange()
		e := catalogEntry{
			ID:      id,
			Name:    st.Name(),
			Format:  st.Format(),
			MinZoom: minZoom,
			MaxZoom: maxZoom,
			Tiles:   s.tileTemplate(r, id),
		}
		if b, ok := st.Bound(); ok {
			e.Bounds = boundArray(b)
		}
		entries = append(entries, e)
	}
	writeJSON(w, http.StatusOK, entries)
}

func boundArray(b orb.Bound) *[4]float64 {
	return &[4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	z, errZ := strconv.Atoi(chi.URLParam(r, "z"))
	x, errX := strconv.Atoi(chi.URLParam(r, "x"))
	y, errY := strconv.Atoi(chi.URLParam(r, "y"))
	if errZ != nil || errX != nil || errY != nil {
		http.Error(w, "malformed tile coordinates", http.StatusBadRequest)
		return
	}
	if z < 0 || z > 22 || x < 0 || y < 0 || x >= 1<<z || y >= 1<<z {
		http.Error(w, fmt.Sprintf("tile %d/%d/%d out of range", z, x, y), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	st, err := s.catalog.Store(source)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}

	key := tilecache.Key(source, z, x, y)
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("tile cache read failed", "key", key, "err", err)
	} else if ok {
		writeTile(w, data, st.Format())
		return
	}
	data, err := st.Tile(ctx, z, x, y)
	if err == mbtiles.ErrTileNotFound {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.logger.Error("tile read failed", "source", source, "z", z, "x", x, "y", y, "err", err)
		http.Error(w, "tile read failed", http.StatusInternalServerError)
		return
	}

	if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("tile cache write failed", "key", key, "err", err)
	}
	writeTile(w, data, st.Format())
}

func writeTile(w http.ResponseWriter, data []byte, format string) {
	switch format {
	case "pbf", "mvt":
		w.Header().Set("Content-Type", "application/x-protobuf")
	case "png":
		w.Header().Set("Content-Type", "image/png")
	default:
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	// MBTiles vector tiles are conventionally stored gzip-compressed.
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		w.Header().Set("Content-Encoding", "gzip")
	}
	w.Write(data)
}

func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	theme := chi.URLParam(r, "theme")
	q := r.URL.Query()

	ref := q.Get("source")
	switch {
	case ref == "":
		// Default to the first catalog source's dynamic endpoint.
		if ids, err := s.catalog.Sources(); err == nil && len(ids) > 0 {
			ref = s.tileTemplate(r, ids[0])
		}
	case archive.IsDroppedKey(ref), strings.Contains(ref, "://"), strings.Contains(ref, "."):
		// Registry keys, archive URLs, and endpoint templates pass
		// through unchanged.
	default:
		ref = s.tileTemplate(r, ref)
	}

	opts := style.Options{
		Theme:     theme,
		Language:  q.Get("lang"),
		SourceRef: ref,
		AssetBase: s.cfg.AssetBase,
	}
	if q.Get("localsprites") == "true" {
		opts.Sprites = style.LocalSprites
		opts.LocalAssetBase = requestBase(r)
	}
	writeJSON(w, http.StatusOK, style.Compose(opts))
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.Error(w, "bad archive name", http.StatusBadRequest)
		return
	}

	f, err := os.Open(filepath.Join(s.cfg.StaticDir, name))
	if err != nil {
		http.Error(w, "no such archive", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.Error(w, "no such archive", http.StatusNotFound)
		return
	}
	w.Header().Set("Accept-Ranges", "bytes")
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// maxRangeSpan caps a single archive range read. Renderer fetches are
// header, directory, and tile sized; anything larger is hostile.
const maxRangeSpan = 16 << 20

// handleArchiveRange bridges registry archives onto HTTP: the renderer
// fetches tilearchive:// byte ranges through this endpoint.
func (s *Server) handleArchiveRange(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	ctx := r.Context()

	if r.Method == http.MethodHead {
		size, err := s.protocol.KeySize(ctx, key)
		if err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		return
	}

	offset, length, ok := parseRange(r.Header.Get("Range"))
	if !ok {
		http.Error(w, "a single bytes range is required", http.StatusBadRequest)
		return
	}
	if length > maxRangeSpan {
		http.Error(w, "range span too large", http.StatusRequestedRangeNotSatisfiable)
		return
	}

	data, err := s.protocol.ReadKeyRange(ctx, key, offset, length)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Range",
		fmt.Sprintf("bytes %d-%d/*", offset, offset+int64(len(data))-1))
	w.WriteHeader(http.StatusPartialContent)
	w.Write(data)
}

// parseRange parses a single "bytes=start-end" range header into an
// offset and length. Open-ended and suffix ranges are rejected; the
// renderer always asks for exact spans.
func parseRange(h string) (offset, length int64, ok bool) {
	spec, found := strings.CutPrefix(h, "bytes=")
	if !found || strings.Contains(spec, ",") {
		return 0, 0, false
	}
	startStr, endStr, found := strings.Cut(spec, "-")
	if !found {
		return 0, 0, false
	}
	start, err1 := strconv.ParseInt(startStr, 10, 64)
	end, err2 := strconv.ParseInt(endStr, 10, 64)
	if err1 != nil || err2 != nil || start < 0 || end < start {
		return 0, 0, false
	}
	return start, end - start + 1, true
}

// tileTemplate builds the z/x/y endpoint template for a catalog source,
// addressed the way this request reached us.
func (s *Server) tileTemplate(r *http.Request, source string) string {
	return requestBase(r) + "/mvt/" + source + "/{z}/{x}/{y}.mvt"
}

func requestBase(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func httpStatus(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeSourceNotFound, apperrors.ErrCodeArchiveNotFound, apperrors.ErrCodeTileNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeInvalidTile, apperrors.ErrCodeInvalidTheme:
		return http.StatusBadRequest
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
