package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tilebound/tileview/pkg/style"
)

// styleCommand creates the style command for composing renderer style
// documents.
func (c *CLI) styleCommand() *cobra.Command {
	var (
		lang         string
		source       string
		assetBase    string
		localSprites bool
		localAssets  string
	)

	cmd := &cobra.Command{
		Use:   "style <theme>",
		Short: "Compose a renderer style document",
		Long:  `Compose the complete style document for a theme and print it as JSON. The source may be a dropped-archive registry key, an archive URL, or a z/x/y endpoint template.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := style.Options{
				Theme:     args[0],
				Language:  lang,
				SourceRef: source,
				AssetBase: assetBase,
			}
			if localSprites {
				opts.Sprites = style.LocalSprites
				opts.LocalAssetBase = localAssets
			}

			doc := style.Compose(opts)
			if len(doc.Sources) == 0 {
				c.Logger.Warn("composed an empty document", "theme", args[0], "source", source)
			}

			out, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding style: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "label language code")
	cmd.Flags().StringVarP(&source, "source", "s", "", "tile source reference")
	cmd.Flags().StringVar(&assetBase, "asset-base", "", "remote sprite/glyph base URL")
	cmd.Flags().BoolVar(&localSprites, "local-sprites", false, "use locally hosted sprites")
	cmd.Flags().StringVar(&localAssets, "local-asset-base", "", "base URL for local assets")

	return cmd
}
