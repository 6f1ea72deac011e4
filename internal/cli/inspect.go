package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tilebound/tileview/pkg/archive"
	"github.com/tilebound/tileview/pkg/httputil"
	"github.com/tilebound/tileview/pkg/style"
	"github.com/tilebound/tileview/pkg/style/compat"
)

// archiveInfo is the cached result of inspecting one archive.
type archiveInfo struct {
	Header   archive.Header   `json:"header"`
	Metadata archive.Metadata `json:"metadata"`
}

// inspectCommand creates the inspect command for examining tile
// archives.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		browse  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <archive>",
		Short: "Inspect a tile archive's header and metadata",
		Long:  `Inspect reads the fixed header and the metadata document of a tile archive, given as a local file path or an HTTP(S) URL. Remote archives are read with byte-range requests; only the needed sections are fetched, and results are cached for a day.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], browse, noCache)
		},
	}

	cmd.Flags().BoolVarP(&browse, "browse", "b", false, "browse metadata interactively")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the inspection cache")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, ref string, browse, noCache bool) error {
	info, cached, err := c.loadArchiveInfo(ctx, ref, noCache)
	if err != nil {
		return err
	}

	h, meta := info.Header, info.Metadata

	fmt.Println(StyleTitle.Render(ref))
	if name, ok := meta.Name(); ok {
		printKeyValue("Name", name)
	}
	if v, ok := meta.Version(); ok {
		printKeyValue("Version", v)
		if res := compat.Check(style.SchemaMajor, v); !res.Compatible {
			printWarning("%s", res.Message)
		}
	}
	if ts, ok := meta.BuildTime(); ok {
		printKeyValue("Built", ts.Format(time.RFC3339))
	}
	printKeyValue("Zoom", fmt.Sprintf("%d–%d", h.MinZoom, h.MaxZoom))
	printKeyValue("Bounds", formatBound(h))
	printKeyValue("Center", fmt.Sprintf("%.4f, %.4f @ z%d", h.CenterLon, h.CenterLat, h.CenterZoom))
	printKeyValue("Tile data", fmt.Sprintf("%d bytes", h.TileDataLength))
	printKeyValue("Compression", compressionName(h.TileCompression))
	if cached {
		printDetail("cached result, --no-cache to refresh")
	}

	if browse && len(meta) > 0 {
		p := tea.NewProgram(newMetadataModel(ref, meta))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("metadata browser: %w", err)
		}
	}
	return nil
}

// loadArchiveInfo reads header and metadata, consulting the inspection
// cache for remote archives. Local files are always read directly.
func (c *CLI) loadArchiveInfo(ctx context.Context, ref string, noCache bool) (archiveInfo, bool, error) {
	remote := isRemoteRef(ref)

	var cache *httputil.Cache
	if remote && !noCache {
		cache = newInspectCache()
	}

	if cache != nil {
		var info archiveInfo
		if hit, err := cache.Get(ref, &info); err == nil && hit {
			return info, true, nil
		}
	}

	sp := newSpinner(ctx, "Reading archive")
	sp.Start()

	a, err := openArchiveRef(ctx, ref)
	if err != nil {
		sp.StopWithError(fmt.Sprintf("Cannot open %s", ref))
		return archiveInfo{}, false, err
	}
	defer a.Close()

	h, err := a.Header(ctx)
	if err != nil {
		sp.StopWithError("Cannot read archive header")
		return archiveInfo{}, false, err
	}
	meta, err := a.Metadata(ctx)
	sp.Stop()
	if err != nil {
		printWarning("Metadata unreadable: %v", err)
		meta = archive.Metadata{}
	}

	info := archiveInfo{Header: h, Metadata: meta}
	if cache != nil {
		if err := cache.Set(ref, info); err != nil {
			c.Logger.Debug("inspection cache write failed", "err", err)
		}
	}
	return info, false, nil
}

func isRemoteRef(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// openArchiveRef opens ref as a URL or a local file.
func openArchiveRef(ctx context.Context, ref string) (*archive.Archive, error) {
	if isRemoteRef(ref) {
		return archive.OpenURL(ctx, ref)
	}
	return archive.OpenFile(ctx, ref)
}

func formatBound(h archive.Header) string {
	b := h.Bound()
	return fmt.Sprintf("%.4f, %.4f → %.4f, %.4f", b.Min[0], b.Min[1], b.Max[0], b.Max[1])
}

func compressionName(c archive.Compression) string {
	switch c {
	case archive.CompressionNone:
		return "none"
	case archive.CompressionGzip:
		return "gzip"
	default:
		return fmt.Sprintf("unknown (%d)", c)
	}
}
