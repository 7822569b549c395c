package cli

import (
	"context"
	"io"
	"testing"

	"github.com/spf13/cobra"

	"github.com/chatglass/chatglass/internal/config"
	"github.com/chatglass/chatglass/pkg/cache"
	"github.com/chatglass/chatglass/pkg/pipeline"
)

// newRenderLikeCommand builds a bare command carrying the shared
// resolve flags, for exercising flag overlay behavior.
func newRenderLikeCommand(flags *resolveFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)
	return cmd
}

func TestNewCacheBackends(t *testing.T) {
	ctx := context.Background()

	t.Run("noCache forces null", func(t *testing.T) {
		cfg := config.Default()
		cfg.Cache.Backend = config.CacheMemory

		c, err := newCache(ctx, cfg, true)
		if err != nil {
			t.Fatalf("newCache() error: %v", err)
		}
		if _, ok := c.(*cache.NullCache); !ok {
			t.Errorf("newCache(noCache) = %T, want *cache.NullCache", c)
		}
	})

	t.Run("none backend", func(t *testing.T) {
		cfg := config.Default()
		cfg.Cache.Backend = config.CacheNone

		c, err := newCache(ctx, cfg, false)
		if err != nil {
			t.Fatalf("newCache() error: %v", err)
		}
		if _, ok := c.(*cache.NullCache); !ok {
			t.Errorf("newCache(none) = %T, want *cache.NullCache", c)
		}
	})

	t.Run("memory backend", func(t *testing.T) {
		cfg := config.Default()
		cfg.Cache.Backend = config.CacheMemory

		c, err := newCache(ctx, cfg, false)
		if err != nil {
			t.Fatalf("newCache() error: %v", err)
		}
		if _, ok := c.(*cache.MemoryCache); !ok {
			t.Errorf("newCache(memory) = %T, want *cache.MemoryCache", c)
		}
	})

	t.Run("file backend honors dir", func(t *testing.T) {
		cfg := config.Default()
		cfg.Cache.Backend = config.CacheFile
		cfg.Cache.Dir = t.TempDir()

		c, err := newCache(ctx, cfg, false)
		if err != nil {
			t.Fatalf("newCache() error: %v", err)
		}
		fc, ok := c.(*cache.FileCache)
		if !ok {
			t.Fatalf("newCache(file) = %T, want *cache.FileCache", c)
		}
		if fc.Dir() != cfg.Cache.Dir {
			t.Errorf("file cache dir = %q, want %q", fc.Dir(), cfg.Cache.Dir)
		}
	})
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Render.IntervalMS = 120
	cfg.Render.NoHover = true
	cfg.Render.LinkTarget = "_blank"
	cfg.Render.Seed = 99

	opts := optionsFromConfig(cfg)
	if opts.IntervalMS != 120 {
		t.Errorf("IntervalMS = %d, want 120", opts.IntervalMS)
	}
	if !opts.NoHover {
		t.Error("NoHover should carry over from config")
	}
	if opts.LinkTarget != "_blank" {
		t.Errorf("LinkTarget = %q, want %q", opts.LinkTarget, "_blank")
	}
	if opts.Seed != 99 {
		t.Errorf("Seed = %d, want 99", opts.Seed)
	}
}

func TestResolveFlagsApply(t *testing.T) {
	t.Run("unset flags keep config values", func(t *testing.T) {
		var flags resolveFlags
		cmd := newRenderLikeCommand(&flags)
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatal(err)
		}

		opts := pipeline.Options{IntervalMS: 200, Seed: 9}
		flags.apply(cmd, &opts)

		if opts.IntervalMS != 200 {
			t.Errorf("IntervalMS = %d, want config value 200", opts.IntervalMS)
		}
		if opts.Seed != 9 {
			t.Errorf("Seed = %d, want config value 9", opts.Seed)
		}
	})

	t.Run("set flags override config", func(t *testing.T) {
		var flags resolveFlags
		cmd := newRenderLikeCommand(&flags)
		if err := cmd.ParseFlags([]string{"--interval", "40", "--seed", "7", "--no-hover"}); err != nil {
			t.Fatal(err)
		}

		opts := pipeline.Options{IntervalMS: 200, Seed: 9}
		flags.apply(cmd, &opts)

		if opts.IntervalMS != 40 {
			t.Errorf("IntervalMS = %d, want flag value 40", opts.IntervalMS)
		}
		if opts.Seed != 7 {
			t.Errorf("Seed = %d, want flag value 7", opts.Seed)
		}
		if !opts.NoHover {
			t.Error("NoHover flag should apply")
		}
	})

	t.Run("random seed wins over seed", func(t *testing.T) {
		var flags resolveFlags
		cmd := newRenderLikeCommand(&flags)
		if err := cmd.ParseFlags([]string{"--seed", "7", "--random-seed"}); err != nil {
			t.Fatal(err)
		}

		var opts pipeline.Options
		flags.apply(cmd, &opts)

		if !opts.RandomSeed {
			t.Error("RandomSeed should be set")
		}
		if opts.Seed != 0 {
			t.Errorf("Seed = %d, want 0 when --random-seed is given", opts.Seed)
		}
	})
}

func TestRootCommandWiring(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"render", "preview", "inspect", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}
