package cli

import (
	"github.com/spf13/cobra"

	"github.com/tilebound/tileview/pkg/style"
	"github.com/tilebound/tileview/pkg/style/compat"
)

// compatCommand creates the compat command for checking style/tileset
// version compatibility.
func (c *CLI) compatCommand() *cobra.Command {
	var styleMajor int

	cmd := &cobra.Command{
		Use:   "compat <tileset-version>",
		Short: "Check style/tileset schema compatibility",
		Long:  `Check whether a tileset's declared version renders correctly under a style major version. Tileset majors the compatibility table has never heard of are assumed forward-compatible.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := compat.Check(styleMajor, args[0])
			if res.Compatible {
				printSuccess("Style v%d renders tileset %s", styleMajor, args[0])
				return nil
			}
			printWarning("%s", res.Message)
			return nil
		},
	}

	cmd.Flags().IntVar(&styleMajor, "style-major", style.SchemaMajor, "style major version to check against")

	return cmd
}
