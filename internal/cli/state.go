package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tilebound/tileview/pkg/viewstate"
)

// stateCommand creates the state command for debugging view-state
// fragments.
func (c *CLI) stateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Decode and encode view-state URL fragments",
	}

	cmd.AddCommand(c.stateDecodeCommand())
	cmd.AddCommand(c.stateEncodeCommand())

	return cmd
}

// stateDecodeCommand creates the "state decode" subcommand.
func (c *CLI) stateDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <fragment>",
		Short: "Decode a fragment into view-state fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := viewstate.Decode(args[0])
			printKeyValue("Theme", s.Theme)
			printKeyValue("Lang", orDash(s.Lang))
			printKeyValue("Source", orDash(s.Source))
			printKeyValue("LocalSprites", strconv.FormatBool(s.LocalSprites))
			printKeyValue("Debug", strconv.FormatBool(s.Debug))
			printKeyValue("StyleVersion", orDash(s.StyleVersion))
			if s.Dropped() {
				printDetail("A locally dropped archive is the active source")
			}
			return nil
		},
	}
}

// stateEncodeCommand creates the "state encode" subcommand.
func (c *CLI) stateEncodeCommand() *cobra.Command {
	var (
		fragment     string
		theme        string
		lang         string
		source       string
		localSprites bool
		debug        bool
		styleVersion string
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode view-state fields into a fragment",
		Long:  `Encode merges the given fields into an existing fragment, preserving foreign keys and their order, and prints the result. Fields at their defaults are omitted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := viewstate.Default()
			if cmd.Flags().Changed("theme") {
				s.Theme = theme
			}
			s.Lang = lang
			s.Source = source
			s.LocalSprites = localSprites
			s.Debug = debug
			s.StyleVersion = styleVersion

			fmt.Println(viewstate.Encode(fragment, s))
			return nil
		},
	}

	cmd.Flags().StringVarP(&fragment, "fragment", "f", "", "existing fragment to merge into")
	cmd.Flags().StringVar(&theme, "theme", viewstate.DefaultTheme, "theme name")
	cmd.Flags().StringVar(&lang, "lang", "", "label language code")
	cmd.Flags().StringVar(&source, "source", "", "tile source reference")
	cmd.Flags().BoolVar(&localSprites, "local-sprites", false, "use locally hosted sprites")
	cmd.Flags().BoolVar(&debug, "debug", false, "debug overlay")
	cmd.Flags().StringVar(&styleVersion, "style-version", "", "pinned layer-set version")

	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
