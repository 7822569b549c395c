// Package pipeline provides the decode → resolve → render pipeline.
//
// The CLI and the HTTP server both produce artifacts from chat input;
// this package centralizes that flow so the two entry points behave
// identically and share one caching scheme.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Decode: parse wire JSON or legacy text into a component tree
//  2. Resolve: flatten the tree into runs with inherited styling
//  3. Render: generate output artifacts in the requested formats
//
// Each stage can be run independently or as part of the complete
// pipeline. Stage outputs are cached under content-derived keys; with
// a fixed seed the whole pipeline is deterministic, so cached
// artifacts are byte-identical to recomputed ones.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   []byte(`{"text":"hello","bold":true}`),
//	    Formats: []render.Format{render.FormatHTML},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	page := result.Artifacts[render.FormatHTML]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/chatglass/chatglass/pkg/cache"
	"github.com/chatglass/chatglass/pkg/component"
	"github.com/chatglass/chatglass/pkg/render"
	"github.com/chatglass/chatglass/pkg/resolve"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Server
// =============================================================================

const (
	// DefaultSeed makes pipeline output reproducible unless a caller
	// explicitly asks for nondeterministic scrambling with seed 0,
	// which also disables snapshot and artifact caching.
	DefaultSeed = uint64(42)

	// DefaultIntervalMS is the scramble animation interval stamped
	// into artifacts that animate client-side.
	DefaultIntervalMS = int64(80)
)

// DefaultFormats is used when no output format is requested.
var DefaultFormats = []render.Format{render.FormatJSON}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. The struct
// serializes to JSON so API requests can carry it directly.
type Options struct {
	// Decode options.
	Input  []byte `json:"input,omitempty"`
	Legacy bool   `json:"legacy,omitempty"`

	// Resolve options.
	IntervalMS int64  `json:"interval_ms,omitempty"`
	NoHover    bool   `json:"no_hover,omitempty"`
	LinkTarget string `json:"link_target,omitempty"`
	Seed       uint64 `json:"seed,omitempty"`

	// RandomSeed requests nondeterministic scrambling instead of the
	// default fixed seed. Leaves Seed at zero.
	RandomSeed bool `json:"random_seed,omitempty"`

	// Render options.
	Formats  []render.Format `json:"formats,omitempty"`
	Title    string          `json:"title,omitempty"`
	Detailed bool            `json:"detailed,omitempty"`

	// Refresh bypasses cache reads, forcing recomputation. Results
	// are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized).
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has run.
	validated bool `json:"-"`
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Component is the decoded tree.
	Component *component.Component

	// RunsJSON is the canonical resolved-run snapshot.
	RunsJSON []byte

	// RunsHash is the content hash of RunsJSON, used in artifact
	// cache keys.
	RunsHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[render.Format][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RunCount    int // Runs in the main tree
	HoverCount  int // Runs carrying a tooltip
	DecodeTime  time.Duration
	ResolveTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	DecodeHit  bool // Whether the decoded tree came from cache
	ResolveHit bool // Whether the run snapshot came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults
// for the full pipeline. Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForDecode(); err != nil {
		return err
	}
	o.SetResolveDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForDecode checks required fields for decoding.
func (o *Options) ValidateForDecode() error {
	if len(o.Input) == 0 {
		return fmt.Errorf("input is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetResolveDefaults applies defaults for resolution.
func (o *Options) SetResolveDefaults() {
	if o.Seed == 0 && !o.RandomSeed {
		o.Seed = DefaultSeed
	}
	if o.IntervalMS < 0 {
		o.IntervalMS = 0
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults applies defaults for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = append([]render.Format(nil), DefaultFormats...)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	for _, f := range o.Formats {
		if _, err := render.ParseFormat(string(f)); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// Deterministic reports whether pipeline output is reproducible.
// Nondeterministic runs skip snapshot and artifact caching.
func (o *Options) Deterministic() bool {
	return o.Seed != 0
}

// ResolveOptions converts to resolver options. The pipeline always
// resolves with a disabled interval: batch artifacts must capture
// scrambled text rather than the source, and must not leave timers
// running. IntervalMS only configures client-side animation.
func (o *Options) ResolveOptions() resolve.Options {
	return resolve.Options{
		NoHover:    o.NoHover,
		LinkTarget: o.LinkTarget,
		Seed:       o.Seed,
	}
}

// RunsKeyOpts returns cache key options for the resolve stage.
func (o *Options) RunsKeyOpts() cache.RunsKeyOpts {
	return cache.RunsKeyOpts{
		IntervalMS: o.IntervalMS,
		NoHover:    o.NoHover,
		LinkTarget: o.LinkTarget,
		Seed:       o.Seed,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format render.Format) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     string(format),
		Title:      o.Title,
		LinkTarget: o.LinkTarget,
		IntervalMS: o.IntervalMS,
		Detailed:   o.Detailed,
	}
}
