package style

import (
	"strings"

	"github.com/tilebound/tileview/pkg/archive"
	"github.com/tilebound/tileview/pkg/archive/registry"
)

// SpriteMode selects where sprite and glyph assets come from.
type SpriteMode int

// Sprite modes.
const (
	// RemoteSprites uses the versioned remote asset base.
	RemoteSprites SpriteMode = iota
	// LocalSprites uses a locally hosted sprite sheet.
	LocalSprites
)

// DefaultAssetBase is the versioned remote base for sprites and glyphs.
const DefaultAssetBase = "https://assets.tilebound.dev/v3"

// Options parameterize one composition.
type Options struct {
	// Theme is the visual theme name. Unknown themes compose empty.
	Theme string

	// Language is the label language code ("" = data default names).
	Language string

	// SourceRef names the tile source: a registry key for a dropped
	// archive, an archive URL, or an opaque tile-endpoint template.
	// Empty composes an empty document.
	SourceRef string

	// Sprites selects local vs remote sprite/glyph assets.
	Sprites SpriteMode

	// AssetBase overrides DefaultAssetBase for remote assets.
	AssetBase string

	// LocalAssetBase is the base URL for locally hosted assets, used
	// when Sprites is LocalSprites.
	LocalAssetBase string

	// OverrideLayers, when non-nil, replaces the generated layer stack
	// verbatim, preserving the caller's order. Used to pin a published
	// layer-set version.
	OverrideLayers []Layer
}

// Compose produces a complete style document for opts.
//
// The resulting document has exactly one vector source bound to the
// resolved source reference. When either the source reference or the
// theme is unresolved, Compose returns an empty document rather than an
// error; the renderer shows a blank map.
func Compose(opts Options) Document {
	p, themeOK := themes[opts.Theme]
	if !themeOK || opts.SourceRef == "" {
		return emptyDocument()
	}

	doc := Document{
		Version: styleVersion,
		Name:    opts.Theme,
		Sources: map[string]Source{
			SourceID: resolveSource(opts.SourceRef),
		},
		Sprite: spriteURL(opts),
		Glyphs: glyphsURL(opts),
	}

	if opts.OverrideLayers != nil {
		doc.Layers = opts.OverrideLayers
	} else {
		doc.Layers = themeLayers(p, opts.Language)
	}
	return doc
}

// resolveSource qualifies a source reference as a renderer source.
//
//   - a dropped-archive registry key → tilearchive://key
//   - a recognized tile-archive URL  → tilearchive://url
//   - anything else                  → opaque tile-endpoint template
func resolveSource(ref string) Source {
	switch {
	case archive.IsDroppedKey(ref):
		return Source{Type: "vector", URL: registry.FormatRef(ref)}
	case isArchiveURL(ref):
		return Source{Type: "vector", URL: registry.FormatRef(ref)}
	default:
		return Source{Type: "vector", Tiles: []string{ref}}
	}
}

// isArchiveURL reports whether ref points at a tile archive rather than
// a z/x/y endpoint template.
func isArchiveURL(ref string) bool {
	return strings.HasSuffix(ref, ".pmtiles")
}

func spriteURL(opts Options) string {
	if opts.Sprites == LocalSprites {
		return strings.TrimSuffix(opts.LocalAssetBase, "/") + "/sprites/" + opts.Theme
	}
	return assetBase(opts) + "/sprites/" + opts.Theme
}

func glyphsURL(opts Options) string {
	base := assetBase(opts)
	if opts.Sprites == LocalSprites && opts.LocalAssetBase != "" {
		base = strings.TrimSuffix(opts.LocalAssetBase, "/")
	}
	return base + "/fonts/{fontstack}/{range}.pbf"
}

func assetBase(opts Options) string {
	if opts.AssetBase != "" {
		return strings.TrimSuffix(opts.AssetBase, "/")
	}
	return DefaultAssetBase
}
