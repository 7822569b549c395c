// Package cli implements the chatglass command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/chatglass/chatglass/internal/config"
	"github.com/chatglass/chatglass/pkg/buildinfo"
	"github.com/chatglass/chatglass/pkg/cache"
	"github.com/chatglass/chatglass/pkg/pipeline"
	"github.com/chatglass/chatglass/pkg/render"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "chatglass"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the value of the persistent --config flag. Empty
	// means the default XDG location.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "chatglass",
		Short:        "Chatglass renders Minecraft chat components outside the game",
		Long:         `Chatglass decodes Minecraft raw JSON text (or legacy §-coded text), resolves it into styled runs, and renders the result for surfaces the game never reaches: terminals, web pages, and graph tools.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/chatglass/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config
// =============================================================================

// loadConfig reads the config file, honoring the --config flag.
func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.ConfigPath)
}

// optionsFromConfig seeds pipeline options with the config file's
// render defaults. Commands layer flag overrides on top.
func optionsFromConfig(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		IntervalMS: cfg.Render.IntervalMS,
		NoHover:    cfg.Render.NoHover,
		LinkTarget: cfg.Render.LinkTarget,
		Seed:       cfg.Render.Seed,
	}
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. noCache forces the
// null cache regardless of configuration.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	cch, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cch, nil, c.Logger), nil
}

// newCache creates the configured cache backend. An unusable cache
// directory degrades to the null cache rather than failing the command.
func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheMemory:
		return cache.NewMemoryCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.RedisCacheConfig())
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			dir, err = cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/chatglass/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// resolveFlags holds the flags shared by commands that configure the
// resolve stage. Each value only applies when the user set the flag,
// so config file defaults stay in effect otherwise.
type resolveFlags struct {
	intervalMS int64
	noHover    bool
	linkTarget string
	seed       uint64
	randomSeed bool
}

// register adds the shared resolve flags to cmd.
func (f *resolveFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.intervalMS, "interval", pipeline.DefaultIntervalMS, "obfuscation scramble interval in milliseconds (0 freezes after one pass)")
	cmd.Flags().BoolVar(&f.noHover, "no-hover", false, "drop hover events during resolution")
	cmd.Flags().StringVar(&f.linkTarget, "link-target", "", "link target hint passed through to rendered links")
	cmd.Flags().Uint64Var(&f.seed, "seed", pipeline.DefaultSeed, "scramble seed for reproducible output")
	cmd.Flags().BoolVar(&f.randomSeed, "random-seed", false, "scramble nondeterministically instead of using a fixed seed")
}

// apply overlays the flags the user actually set onto opts.
func (f *resolveFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("interval") {
		opts.IntervalMS = f.intervalMS
	}
	if cmd.Flags().Changed("no-hover") {
		opts.NoHover = f.noHover
	}
	if cmd.Flags().Changed("link-target") {
		opts.LinkTarget = f.linkTarget
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = f.seed
	}
	if f.randomSeed {
		opts.RandomSeed = true
		opts.Seed = 0
	}
}

// parseFormats parses --format values into render formats, splitting
// comma-separated entries and dropping duplicates. Empty input falls
// back to the configured default format.
func parseFormats(values []string, fallback string) ([]render.Format, error) {
	if len(values) == 0 {
		values = []string{fallback}
	}
	formats := make([]render.Format, 0, len(values))
	seen := make(map[render.Format]bool)
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			f, err := render.ParseFormat(part)
			if err != nil {
				return nil, err
			}
			if seen[f] {
				continue
			}
			seen[f] = true
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("no output format given")
	}
	return formats, nil
}
