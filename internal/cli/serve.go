package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tilebound/tileview/internal/server"
	"github.com/tilebound/tileview/internal/server/tilecache"
	"github.com/tilebound/tileview/pkg/archive/registry"
	"github.com/tilebound/tileview/pkg/mbtiles"
)

// serveCommand creates the serve command running the tile endpoint.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		cfgPath string
		listen  string
		dataDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the self-hosted tile endpoint",
		Long:  `Serve dynamic tiles from a directory of MBTiles files, range-served static archives, composed style documents, and registry byte ranges over HTTP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := DefaultServeConfig()
			if cfgPath != "" {
				loaded, err := LoadServeConfig(cfgPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			if cmd.Flags().Changed("data") {
				cfg.DataDir = dataDir
			}
			if cfg.DataDir == "" {
				return fmt.Errorf("no data directory: set --data or data_dir in the config")
			}
			return c.runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVarP(&listen, "listen", "l", ":8080", "listen address")
	cmd.Flags().StringVarP(&dataDir, "data", "d", "", "directory of .mbtiles sources")

	return cmd
}

func (c *CLI) runServer(ctx context.Context, cfg ServeConfig) error {
	cache, err := c.newTileCache(ctx, cfg)
	if err != nil {
		return err
	}

	catalog := mbtiles.NewCatalog(cfg.DataDir)
	defer catalog.Close()

	reg := registry.New()
	defer reg.Close()

	srv := server.New(server.Config{
		Addr:      cfg.Listen,
		DataDir:   cfg.DataDir,
		StaticDir: cfg.StaticDir,
		AssetBase: cfg.AssetBase,
		CacheTTL:  cfg.CacheTTL.Duration,
		AllowAll:  cfg.AllowAllOrigins,
	}, catalog, registry.NewProtocol(reg), cache, c.Logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

func (c *CLI) newTileCache(ctx context.Context, cfg ServeConfig) (tilecache.Cache, error) {
	switch cfg.Cache {
	case "", "memory":
		return tilecache.NewMemory(), nil
	case "redis":
		cache, err := tilecache.NewRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("tile cache connected", "backend", "redis", "addr", cfg.RedisAddr)
		return cache, nil
	case "none":
		return tilecache.NewNull(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache)
	}
}
