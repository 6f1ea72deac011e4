package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// buildArchive assembles a minimal valid archive: a 127-byte header
// followed directly by a gzip-compressed JSON metadata section.
func buildArchive(t *testing.T, meta map[string]any) []byte {
	t.Helper()

	var metaBuf bytes.Buffer
	zw := gzip.NewWriter(&metaBuf)
	if err := json.NewEncoder(zw).Encode(meta); err != nil {
		t.Fatalf("encode metadata: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}

	header := make([]byte, HeaderSize)
	copy(header, "PMTiles")
	header[7] = 3

	le := binary.LittleEndian
	le.PutUint64(header[24:32], HeaderSize)                  // metadata offset
	le.PutUint64(header[32:40], uint64(metaBuf.Len()))       // metadata length
	header[97] = byte(CompressionGzip)                       // internal compression
	header[98] = byte(CompressionGzip)                       // tile compression
	header[99] = 1                                           // tile type: mvt
	header[100] = 2                                          // min zoom
	header[101] = 14                                         // max zoom
	minLon, minLat := int32(-740000000), int32(400000000)
	maxLon, maxLat := int32(-730000000), int32(410000000)
	le.PutUint32(header[102:106], uint32(minLon)) // min lon -74
	le.PutUint32(header[106:110], uint32(minLat)) // min lat 40
	le.PutUint32(header[110:114], uint32(maxLon)) // max lon -73
	le.PutUint32(header[114:118], uint32(maxLat)) // max lat 41

	return append(header, metaBuf.Bytes()...)
}

// archiveHost serves body with byte-range support and counts requests.
func archiveHost(t *testing.T, body []byte, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		var start, end int64
		if _, err := fmt.Sscanf(r.Header.Get("Range"), "bytes=%d-%d", &start, &end); err != nil {
			w.Write(body)
			return
		}
		if end >= int64(len(body)) {
			end = int64(len(body)) - 1
		}
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, len(body)))
		w.WriteHeader(http.StatusPartialContent)
		w.Write(body[start : end+1])
	}))
}

func TestParseHeader(t *testing.T) {
	data := buildArchive(t, map[string]any{})

	h, err := ParseHeader(data)
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	if h.MinZoom != 2 || h.MaxZoom != 14 {
		t.Errorf("zoom range = [%d, %d], want [2, 14]", h.MinZoom, h.MaxZoom)
	}
	if h.MinLat != 40 || h.MaxLat != 41 {
		t.Errorf("lat range = [%v, %v], want [40, 41]", h.MinLat, h.MaxLat)
	}
	if h.MaxLon != -73 {
		t.Errorf("MaxLon = %v, want -73", h.MaxLon)
	}
	if h.InternalCompression != CompressionGzip {
		t.Errorf("InternalCompression = %v, want gzip", h.InternalCompression)
	}

	b := h.Bound()
	if b.Min[1] != 40 || b.Max[1] != 41 {
		t.Errorf("Bound lat = [%v, %v], want [40, 41]", b.Min[1], b.Max[1])
	}
}

func TestParseHeader_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short", make([]byte, 10)},
		{"bad magic", make([]byte, HeaderSize)},
		{"bad version", append([]byte("PMTiles\x09"), make([]byte, HeaderSize-8)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseHeader(tt.data); err == nil {
				t.Error("ParseHeader accepted invalid header")
			}
		})
	}
}

func TestArchive_HeaderAndMetadata(t *testing.T) {
	body := buildArchive(t, map[string]any{
		"name":    "demo",
		"version": "3.5.0",
	})
	srv := archiveHost(t, body, nil)
	defer srv.Close()

	ctx := context.Background()
	a, err := OpenURL(ctx, srv.URL)
	if err != nil {
		t.Fatalf("OpenURL failed: %v", err)
	}
	defer a.Close()

	h, err := a.Header(ctx)
	if err != nil {
		t.Fatalf("Header failed: %v", err)
	}
	if h.MaxZoom != 14 {
		t.Errorf("MaxZoom = %d, want 14", h.MaxZoom)
	}

	meta, err := a.Metadata(ctx)
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if v, ok := meta.Version(); !ok || v != "3.5.0" {
		t.Errorf("Version = (%q, %v), want (3.5.0, true)", v, ok)
	}
	if name, ok := meta.Name(); !ok || name != "demo" {
		t.Errorf("Name = (%q, %v), want (demo, true)", name, ok)
	}
}

func TestArchive_MetadataMemoized(t *testing.T) {
	body := buildArchive(t, map[string]any{"name": "demo"})
	var hits atomic.Int64
	srv := archiveHost(t, body, &hits)
	defer srv.Close()

	ctx := context.Background()
	a, err := OpenURL(ctx, srv.URL)
	if err != nil {
		t.Fatalf("OpenURL failed: %v", err)
	}

	if _, err := a.Metadata(ctx); err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	before := hits.Load()

	// Repeated calls must not touch the network again.
	for range 5 {
		if _, err := a.Metadata(ctx); err != nil {
			t.Fatalf("Metadata failed: %v", err)
		}
		if _, err := a.Header(ctx); err != nil {
			t.Fatalf("Header failed: %v", err)
		}
	}
	if after := hits.Load(); after != before {
		t.Errorf("memoized calls hit the network: %d requests, want %d", after, before)
	}
}

func TestArchive_MetadataFieldsOptional(t *testing.T) {
	// No version, no buildtime: valid archive, absent fields.
	a := New("mem", NewMemorySource(buildArchive(t, map[string]any{"name": "bare"})))

	meta, err := a.Metadata(context.Background())
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if _, ok := meta.Version(); ok {
		t.Error("Version reported present on archive without one")
	}
	if _, ok := meta.BuildTime(); ok {
		t.Error("BuildTime reported present on archive without one")
	}
}

func TestMetadata_BuildTime(t *testing.T) {
	meta := Metadata{"planetiler:buildtime": "2025-06-01T12:00:00Z"}
	ts, ok := meta.BuildTime()
	if !ok {
		t.Fatal("BuildTime not found")
	}
	if ts.Year() != 2025 || ts.Month() != 6 {
		t.Errorf("BuildTime = %v", ts)
	}

	if _, ok := (Metadata{"buildtime": "not a timestamp"}).BuildTime(); ok {
		t.Error("BuildTime parsed garbage")
	}
}

func TestOpen_FailsOnUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // immediately dead

	if _, err := OpenURL(context.Background(), srv.URL); err == nil {
		t.Error("OpenURL succeeded against a dead host")
	}
}

func TestDroppedKeys(t *testing.T) {
	k1, k2 := NewDroppedKey(), NewDroppedKey()
	if k1 == k2 {
		t.Error("dropped keys collide")
	}
	if !IsDroppedKey(k1) {
		t.Errorf("IsDroppedKey(%q) = false", k1)
	}
	if IsDroppedKey("https://tiles.example.com/planet.pmtiles") {
		t.Error("IsDroppedKey matched a URL")
	}
}
