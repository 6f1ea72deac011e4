package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tilebound/tileview/pkg/endpoint"
)

// probeCommand creates the probe command for checking endpoint
// selection.
func (c *CLI) probeCommand() *cobra.Command {
	var (
		base     string
		fallback string
		source   string
		hosted   bool
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Probe the self-hosted endpoint and show the selection",
		Long:  `Probe runs the same endpoint selection the viewer performs on page load: one bounded health check against the self-hosted endpoint, falling back to the static host when it fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &endpoint.Resolver{
				SelfHosted: endpoint.Set{
					StaticBase:  base + "/static",
					DynamicBase: base,
					HealthURL:   base + "/health",
				},
				Fallback: endpoint.Set{StaticBase: fallback},
				Timeout:  timeout,
			}
			if hosted {
				r.Context = endpoint.Hosted
			}

			ctx := cmd.Context()
			p := newProgress(c.Logger)
			class := r.Select(ctx)
			p.done("Selected " + class.String() + " endpoint")
			printKeyValue("Context", r.Context.String())

			set := r.Endpoints(ctx)
			if class == endpoint.SelfHosted {
				printSuccess("Self-hosted endpoint is healthy")
			} else {
				printWarning("Self-hosted endpoint unreachable, using fallback")
			}
			printKeyValue("Static", set.StaticURL("<archive>"))
			if tiles := r.DynamicTileURL(ctx, source); tiles != "" {
				printKeyValue("Dynamic", tiles)
			} else {
				printDetail("No dynamic tiles on this endpoint class")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&base, "base", "b", "http://localhost:8080", "self-hosted base URL")
	cmd.Flags().StringVarP(&fallback, "fallback", "f", "https://static.tilebound.dev", "fallback static base URL")
	cmd.Flags().StringVarP(&source, "source", "s", "osm", "dynamic source name for the example URL")
	cmd.Flags().BoolVar(&hosted, "hosted", false, "probe as if served from the public host")
	cmd.Flags().DurationVar(&timeout, "timeout", endpoint.DefaultProbeTimeout, "probe timeout")

	return cmd
}
