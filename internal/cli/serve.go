package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chatglass/chatglass/internal/config"
	"github.com/chatglass/chatglass/internal/server"
	"github.com/chatglass/chatglass/pkg/store"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr         string
		storeBackend string
		cacheBackend string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API and document pages over HTTP",
		Long: `Serve the render API and document pages over HTTP.

The server exposes POST /api/v1/render for one-shot rendering, CRUD
endpoints for stored documents, and GET /d/{id} HTML pages for sharing
them. Backends come from the config file; --addr, --store, and --cache
override it. The server shuts down gracefully on SIGINT/SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if storeBackend != "" {
				cfg.Store.Backend = storeBackend
			}
			if cacheBackend != "" {
				cfg.Cache.Backend = cacheBackend
			}
			// Re-validate so an unknown --store or --cache value fails
			// the same way it would in the config file.
			if err := cfg.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&storeBackend, "store", "", "document store backend: memory, mongo (overrides config)")
	cmd.Flags().StringVar(&cacheBackend, "cache", "", "cache backend: file, memory, redis, none (overrides config)")

	return cmd
}

// runServe builds the configured backends and runs the server until the
// context is cancelled.
func (c *CLI) runServe(ctx context.Context, cfg *config.Config) error {
	cch, err := newCache(ctx, cfg, false)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	st, err := newStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}

	srv := server.New(server.Options{
		Addr:      cfg.Server.Addr,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
		Store:     st,
		Cache:     cch,
		Logger:    c.Logger,
		Render: server.RenderDefaults{
			IntervalMS: cfg.Render.IntervalMS,
			NoHover:    cfg.Render.NoHover,
			LinkTarget: cfg.Render.LinkTarget,
			Seed:       cfg.Render.Seed,
		},
	})

	c.Logger.Info("Starting server",
		"addr", cfg.Server.Addr,
		"store", cfg.Store.Backend,
		"cache", cfg.Cache.Backend)
	printInfo("Listening on http://%s", cfg.Server.Addr)

	return srv.Start(ctx)
}

// newStore creates the configured document store backend.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreMongo:
		return store.NewMongoStore(ctx, cfg.MongoStoreConfig())
	default:
		return store.NewMemoryStore(), nil
	}
}
