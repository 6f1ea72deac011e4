// Package cli implements the tileview command-line interface.
//
// Commands cover running the self-hosted tile endpoint, inspecting tile
// archives, composing style documents, probing endpoint health, and
// debugging view-state fragments. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const (
	// appName is the application name used for directories and display.
	appName = "tileview"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

var (
	version = "dev" // semantic version, injected via ldflags
	commit  = ""    // git commit SHA
	date    = ""    // build timestamp
)

// SetVersion sets the version information displayed by --version. It is
// called by the main package with values injected at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands
// registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Tileview serves and inspects self-hosted map tiles",
		Long:         `Tileview is the serving and tooling side of a self-hosted map stack: it hosts dynamic tiles and range-served archives, composes renderer style documents, and inspects tile archives and view-state fragments.`,
		Version:      version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, version, commit, date))

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.styleCommand())
	root.AddCommand(c.probeCommand())
	root.AddCommand(c.stateCommand())
	root.AddCommand(c.compatCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
