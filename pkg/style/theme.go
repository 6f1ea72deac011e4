package style

import "sort"

// SchemaMajor is the major version of the tileset schema the built-in
// themes are written against. The compatibility checker compares it with
// an archive's declared version.
const SchemaMajor = 3

// palette holds the colors one theme assigns to the canonical layers.
type palette struct {
	background string
	land       string
	water      string
	road       string
	boundary   string
	labelText  string
	labelHalo  string
}

// Built-in themes. Every theme shares the canonical layer skeleton and
// differs only in palette, so layer order is identical across themes.
var themes = map[string]palette{
	"light": {
		background: "#f8f4f0",
		land:       "#ece7e1",
		water:      "#a0c8f0",
		road:       "#ffffff",
		boundary:   "#9e9cab",
		labelText:  "#333344",
		labelHalo:  "rgba(255,255,255,0.8)",
	},
	"dark": {
		background: "#1a1a2e",
		land:       "#232336",
		water:      "#10104a",
		road:       "#3c3c55",
		boundary:   "#565666",
		labelText:  "#c8c8d8",
		labelHalo:  "rgba(20,20,40,0.8)",
	},
	"bright": {
		background: "#ffffff",
		land:       "#f2efe9",
		water:      "#66b2ff",
		road:       "#fbcf5f",
		boundary:   "#a788de",
		labelText:  "#111111",
		labelHalo:  "rgba(255,255,255,0.9)",
	},
}

// Themes returns the names of all built-in themes, sorted.
func Themes() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasTheme reports whether name is a known theme.
func HasTheme(name string) bool {
	_, ok := themes[name]
	return ok
}

// labelField builds the name expression for a language: the localized
// name where the data has one, the default name otherwise.
func labelField(lang string) any {
	if lang == "" {
		return []any{"get", "name"}
	}
	return []any{"coalesce", []any{"get", "name:" + lang}, []any{"get", "name"}}
}

// themeLayers generates the canonical layer stack for a palette.
//
// Order is the draw order and must not be permuted: background, land and
// water fills first, then lines, then symbols on top.
func themeLayers(p palette, lang string) []Layer {
	return []Layer{
		{
			ID:    "background",
			Type:  "background",
			Paint: map[string]any{"background-color": p.background},
		},
		{
			ID:          "land",
			Type:        "fill",
			Source:      SourceID,
			SourceLayer: "landcover",
			Paint:       map[string]any{"fill-color": p.land},
		},
		{
			ID:          "water",
			Type:        "fill",
			Source:      SourceID,
			SourceLayer: "water",
			Paint:       map[string]any{"fill-color": p.water},
		},
		{
			ID:          "roads",
			Type:        "line",
			Source:      SourceID,
			SourceLayer: "transportation",
			MinZoom:     5,
			Layout:      map[string]any{"line-cap": "round", "line-join": "round"},
			Paint: map[string]any{
				"line-color": p.road,
				"line-width": []any{"interpolate", []any{"exponential", 1.6}, []any{"zoom"}, 5, 0.5, 18, 12},
			},
		},
		{
			ID:          "boundaries",
			Type:        "line",
			Source:      SourceID,
			SourceLayer: "boundary",
			Filter:      []any{"<=", []any{"get", "admin_level"}, 4},
			Paint: map[string]any{
				"line-color":     p.boundary,
				"line-dasharray": []any{3, 2},
			},
		},
		{
			ID:          "place-labels",
			Type:        "symbol",
			Source:      SourceID,
			SourceLayer: "place",
			Layout: map[string]any{
				"text-field": labelField(lang),
				"text-size":  []any{"interpolate", []any{"linear"}, []any{"zoom"}, 4, 10, 12, 22},
			},
			Paint: map[string]any{
				"text-color":      p.labelText,
				"text-halo-color": p.labelHalo,
				"text-halo-width": 1.2,
			},
		},
	}
}
