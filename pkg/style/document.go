// Package style composes renderable style documents from a named theme,
// a language, and a resolved tile source.
//
// A style document is the declarative input of the rendering engine:
// data sources plus an ordered layer stack. Order is bottom-to-top and
// significant — later layers draw over earlier ones — so themes emit
// their layers in canonical draw order (background and fills beneath
// lines beneath labels).
//
// Composition never fails: an unresolved source or theme produces a
// document with empty sources and layers, and rendering a blank map is
// the defined behavior for incomplete configuration.
package style

// SourceID is the name of the single vector source every composed
// document binds its layers to.
const SourceID = "basemap"

// Document is a renderable style: sources, ordered layers and asset URLs.
type Document struct {
	Version int               `json:"version"`
	Name    string            `json:"name,omitempty"`
	Sources map[string]Source `json:"sources"`
	Sprite  string            `json:"sprite,omitempty"`
	Glyphs  string            `json:"glyphs,omitempty"`
	Layers  []Layer           `json:"layers"`
}

// Source describes one tile source. Either URL (an archive reference
// resolved by the tile-protocol intercept) or Tiles (endpoint templates)
// is set, never both.
type Source struct {
	Type    string   `json:"type"`
	URL     string   `json:"url,omitempty"`
	Tiles   []string `json:"tiles,omitempty"`
	MinZoom int      `json:"minzoom,omitempty"`
	MaxZoom int      `json:"maxzoom,omitempty"`
}

// Layer is one draw layer. Paint and layout properties are open
// documents interpreted by the rendering engine.
type Layer struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Source      string         `json:"source,omitempty"`
	SourceLayer string         `json:"source-layer,omitempty"`
	MinZoom     float64        `json:"minzoom,omitempty"`
	MaxZoom     float64        `json:"maxzoom,omitempty"`
	Filter      any            `json:"filter,omitempty"`
	Layout      map[string]any `json:"layout,omitempty"`
	Paint       map[string]any `json:"paint,omitempty"`
}

// styleVersion is the style document schema version the renderer accepts.
const styleVersion = 8

// emptyDocument is the defined result for unresolved configuration.
func emptyDocument() Document {
	return Document{
		Version: styleVersion,
		Sources: map[string]Source{},
		Layers:  []Layer{},
	}
}
