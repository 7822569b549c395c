// Package config loads chatglass configuration from a TOML file.
//
// Configuration is optional: every field has a working default, and a
// missing file at the default location is not an error. Precedence is
// flags over file over defaults; the CLI applies flag overrides after
// loading, so this package only deals with the file and default layers.
//
// The default location follows XDG ($XDG_CONFIG_HOME/chatglass/config.toml,
// falling back to ~/.config/chatglass/config.toml). An explicit --config
// path that does not exist is an error, unlike the default location.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chatglass/chatglass/pkg/cache"
	"github.com/chatglass/chatglass/pkg/errors"
	"github.com/chatglass/chatglass/pkg/pipeline"
	"github.com/chatglass/chatglass/pkg/render"
	"github.com/chatglass/chatglass/pkg/store"
)

// appName is used for the XDG config directory.
const appName = "chatglass"

// Cache backend names accepted in [cache].
const (
	CacheFile   = "file"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Store backend names accepted in [store].
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config is the full chatglass configuration.
type Config struct {
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
}

// RenderConfig sets defaults for the render pipeline. Zero values fall
// back to the pipeline defaults, so an empty section is valid.
type RenderConfig struct {
	// Format is the default output format for the render command.
	Format string `toml:"format"`

	// IntervalMS is the obfuscation scramble interval in milliseconds.
	IntervalMS int64 `toml:"interval_ms"`

	// NoHover drops hover events during resolution.
	NoHover bool `toml:"no_hover"`

	// LinkTarget is the link target hint passed through to surfaces.
	LinkTarget string `toml:"link_target"`

	// Seed is the scramble seed. Zero means the pipeline default.
	Seed uint64 `toml:"seed"`
}

// CacheConfig selects the pipeline cache backend.
type CacheConfig struct {
	// Backend is one of file, memory, redis, or none. Empty means file.
	Backend string `toml:"backend"`

	// Dir overrides the XDG cache directory for the file backend.
	Dir string `toml:"dir"`

	Redis RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Addr is the listen address, e.g. "127.0.0.1:8533".
	Addr string `toml:"addr"`

	// RateLimit is the sustained requests per second allowed per
	// client. Zero means the server default.
	RateLimit float64 `toml:"rate_limit"`

	// RateBurst is the burst size for the per-client limiter.
	RateBurst int `toml:"rate_burst"`
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	// Backend is one of memory or mongo. Empty means memory.
	Backend string `toml:"backend"`

	Mongo MongoConfig `toml:"mongo"`
}

// MongoConfig configures the mongo document store.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Format:     string(render.FormatJSON),
			IntervalMS: pipeline.DefaultIntervalMS,
			Seed:       pipeline.DefaultSeed,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Server: ServerConfig{
			Addr:      "127.0.0.1:8533",
			RateLimit: 10,
			RateBurst: 20,
		},
		Store: StoreConfig{
			Backend: StoreMemory,
			Mongo: MongoConfig{
				URI:      "mongodb://localhost:27017",
				Database: "chatglass",
			},
		},
	}
}

// DefaultPath returns the XDG config file path
// (~/.config/chatglass/config.toml unless XDG_CONFIG_HOME is set).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config file at path and merges it over the defaults.
// An empty path means the default location, where a missing file is
// fine; an explicit path must exist. Unknown keys are rejected so a
// typo fails loudly instead of being ignored.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return cfg, cfg.ValidateAndSetDefaults()
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateAndSetDefaults checks field values and fills in anything the
// file left empty.
func (c *Config) ValidateAndSetDefaults() error {
	if c.Render.Format == "" {
		c.Render.Format = string(render.FormatJSON)
	}
	if _, err := render.ParseFormat(c.Render.Format); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render.format")
	}
	if c.Render.IntervalMS < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.interval_ms cannot be negative")
	}
	if c.Render.IntervalMS == 0 {
		c.Render.IntervalMS = pipeline.DefaultIntervalMS
	}
	if c.Render.Seed == 0 {
		c.Render.Seed = pipeline.DefaultSeed
	}

	switch c.Cache.Backend {
	case "":
		c.Cache.Backend = CacheFile
	case CacheFile, CacheMemory, CacheNone:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis.addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (file, memory, redis, none)", c.Cache.Backend)
	}

	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8533"
	}
	if c.Server.RateLimit < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.rate_limit cannot be negative")
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 10
	}
	if c.Server.RateBurst <= 0 {
		c.Server.RateBurst = 20
	}

	switch c.Store.Backend {
	case "":
		c.Store.Backend = StoreMemory
	case StoreMemory:
	case StoreMongo:
		if c.Store.Mongo.URI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo.uri is required for the mongo backend")
		}
		if c.Store.Mongo.Database == "" {
			c.Store.Mongo.Database = "chatglass"
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q (memory, mongo)", c.Store.Backend)
	}

	return nil
}

// RedisCacheConfig converts the cache section into the pkg/cache form.
func (c *Config) RedisCacheConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Addr:     c.Cache.Redis.Addr,
		Password: c.Cache.Redis.Password,
		DB:       c.Cache.Redis.DB,
	}
}

// MongoStoreConfig converts the store section into the pkg/store form.
func (c *Config) MongoStoreConfig() store.MongoConfig {
	return store.MongoConfig{
		URI:        c.Store.Mongo.URI,
		Database:   c.Store.Mongo.Database,
		Collection: c.Store.Mongo.Collection,
	}
}
