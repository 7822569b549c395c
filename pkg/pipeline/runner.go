package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/chatglass/chatglass/pkg/action"
	"github.com/chatglass/chatglass/pkg/cache"
	"github.com/chatglass/chatglass/pkg/component"
	"github.com/chatglass/chatglass/pkg/component/legacy"
	"github.com/chatglass/chatglass/pkg/observability"
	"github.com/chatglass/chatglass/pkg/render"
	"github.com/chatglass/chatglass/pkg/render/dot"
	"github.com/chatglass/chatglass/pkg/render/html"
	"github.com/chatglass/chatglass/pkg/render/term"
	"github.com/chatglass/chatglass/pkg/resolve"
)

// Runner encapsulates pipeline execution with caching. Both CLI and
// server use it, so caching behavior stays identical across entry
// points.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer falls back to the default keyer; a nil cache disables
// caching; a nil logger falls back to the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete decode → resolve → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[render.Format][]byte),
	}

	// Stage 1: Decode
	decodeStart := time.Now()
	tree, decodeHit, err := r.DecodeWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	result.Component = tree
	result.Stats.DecodeTime = time.Since(decodeStart)
	result.CacheInfo.DecodeHit = decodeHit
	result.Stats.RunCount, result.Stats.HoverCount = treeStats(tree, opts.NoHover)

	r.Logger.Info("decoded input",
		"legacy", opts.Legacy,
		"runs", result.Stats.RunCount,
		"duration", result.Stats.DecodeTime)

	// Stage 2: Resolve
	resolveStart := time.Now()
	snapshot, resolveHit, err := r.ResolveWithCacheInfo(ctx, tree, opts)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	result.RunsJSON = snapshot
	result.RunsHash = cache.Hash(snapshot)
	result.Stats.ResolveTime = time.Since(resolveStart)
	result.CacheInfo.ResolveHit = resolveHit

	r.Logger.Info("resolved runs",
		"runs", result.Stats.RunCount,
		"hovers", result.Stats.HoverCount,
		"duration", result.Stats.ResolveTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, tree, snapshot, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// DecodeWithCacheInfo parses the input with caching and reports
// whether the tree came from cache. The cached form is the canonical
// JSON re-encoding, so legacy text decodes from cache without
// re-parsing.
func (r *Runner) DecodeWithCacheInfo(ctx context.Context, opts Options) (tree *component.Component, hit bool, err error) {
	if err := opts.ValidateForDecode(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	observability.Pipeline().OnDecodeStart(ctx, opts.Legacy, len(opts.Input))
	start := time.Now()
	defer func() {
		observability.Pipeline().OnDecodeComplete(ctx, opts.Legacy, hit, time.Since(start), err)
	}()

	inputHash := cache.Hash(opts.Input)
	cacheKey := r.Keyer.ComponentKey(inputHash, cache.ComponentKeyOpts{Legacy: opts.Legacy})

	if !opts.Refresh {
		if data, ok, getErr := r.Cache.Get(ctx, cacheKey); getErr == nil && ok {
			if cached, decodeErr := component.Decode(data); decodeErr == nil {
				observability.Cache().OnCacheHit(ctx, "component")
				return cached, true, nil
			}
			// Corrupt entry: fall through to re-decode.
		}
		observability.Cache().OnCacheMiss(ctx, "component")
	}

	if opts.Legacy {
		tree = legacy.Parse(string(opts.Input))
	} else {
		tree, err = component.Decode(opts.Input)
		if err != nil {
			return nil, false, err
		}
	}

	if canonical, marshalErr := json.Marshal(tree); marshalErr == nil {
		_ = r.Cache.Set(ctx, cacheKey, canonical, cache.TTLComponent)
		observability.Cache().OnCacheSet(ctx, "component", len(canonical))
	}

	return tree, false, nil
}

// Decode is a convenience wrapper that discards the cache hit info.
func (r *Runner) Decode(ctx context.Context, opts Options) (*component.Component, error) {
	tree, _, err := r.DecodeWithCacheInfo(ctx, opts)
	return tree, err
}

// ResolveWithCacheInfo produces the canonical run snapshot with
// caching. The snapshot is inert: scramblers run one pass during
// resolution and are released before returning, so no timers outlive
// the call.
func (r *Runner) ResolveWithCacheInfo(ctx context.Context, tree *component.Component, opts Options) (snapshot []byte, hit bool, err error) {
	opts.SetResolveDefaults()
	r.applyLogger(&opts)

	observability.Pipeline().OnResolveStart(ctx)
	start := time.Now()
	defer func() {
		observability.Pipeline().OnResolveComplete(ctx, hit, time.Since(start), err)
	}()

	canonical, err := json.Marshal(tree)
	if err != nil {
		return nil, false, fmt.Errorf("serialize tree for cache key: %w", err)
	}
	treeHash := cache.Hash(canonical)
	cacheKey := r.Keyer.RunsKey(treeHash, opts.RunsKeyOpts())

	if opts.Deterministic() && !opts.Refresh {
		if data, ok, getErr := r.Cache.Get(ctx, cacheKey); getErr == nil && ok {
			observability.Cache().OnCacheHit(ctx, "runs")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "runs")
	}

	run, err := resolve.Resolve(tree, opts.ResolveOptions())
	if err != nil {
		return nil, false, err
	}
	runs := []*resolve.Run{run}
	defer resolve.ReleaseAll(runs)

	snapshot, err = render.JSON(runs,
		render.WithJSONSeed(opts.Seed),
		render.WithJSONInterval(time.Duration(opts.IntervalMS)*time.Millisecond))
	if err != nil {
		return nil, false, err
	}

	if opts.Deterministic() {
		_ = r.Cache.Set(ctx, cacheKey, snapshot, cache.TTLRuns)
		observability.Cache().OnCacheSet(ctx, "runs", len(snapshot))
	}

	return snapshot, false, nil
}

// Resolve is a convenience wrapper that discards the cache hit info.
func (r *Runner) Resolve(ctx context.Context, tree *component.Component, opts Options) ([]byte, error) {
	snapshot, _, err := r.ResolveWithCacheInfo(ctx, tree, opts)
	return snapshot, err
}

// RenderWithCacheInfo generates the requested artifacts. The hit
// return reports whether every artifact was served without live
// rendering; terminal output depends on the active color profile, so
// it is always rendered live and never cached.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, tree *component.Component, snapshot []byte, opts Options) (artifacts map[render.Format][]byte, hit bool, err error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	opts.SetResolveDefaults()
	r.applyLogger(&opts)

	formats := make([]string, len(opts.Formats))
	for i, f := range opts.Formats {
		formats[i] = string(f)
	}
	observability.Pipeline().OnRenderStart(ctx, formats)
	start := time.Now()
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, formats, hit, time.Since(start), err)
	}()

	runsHash := cache.Hash(snapshot)
	artifacts = make(map[render.Format][]byte, len(opts.Formats))
	var missing []render.Format

	for _, format := range opts.Formats {
		switch {
		case format == render.FormatJSON:
			artifacts[format] = snapshot
		case format == render.FormatTerm || !opts.Deterministic() || opts.Refresh:
			missing = append(missing, format)
		default:
			cacheKey := r.Keyer.ArtifactKey(runsHash, opts.ArtifactKeyOpts(format))
			if data, ok, getErr := r.Cache.Get(ctx, cacheKey); getErr == nil && ok {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
			} else {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				missing = append(missing, format)
			}
		}
	}

	if len(missing) == 0 {
		return artifacts, true, nil
	}

	run, err := resolve.Resolve(tree, opts.ResolveOptions())
	if err != nil {
		return nil, false, err
	}
	runs := []*resolve.Run{run}
	defer resolve.ReleaseAll(runs)

	for _, format := range missing {
		data, err := r.renderOne(runs, format, opts)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data

		if format != render.FormatTerm && opts.Deterministic() {
			cacheKey := r.Keyer.ArtifactKey(runsHash, opts.ArtifactKeyOpts(format))
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return artifacts, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, tree *component.Component, snapshot []byte, opts Options) (map[render.Format][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, tree, snapshot, opts)
	return artifacts, err
}

// renderOne renders a single format from live runs.
func (r *Runner) renderOne(runs []*resolve.Run, format render.Format, opts Options) ([]byte, error) {
	switch format {
	case render.FormatText:
		return []byte(render.Text(runs) + "\n"), nil

	case render.FormatTerm:
		return []byte(term.Render(runs) + "\n"), nil

	case render.FormatHTML:
		htmlOpts := []html.Option{
			html.WithTitle(opts.Title),
			html.WithLinkTarget(opts.LinkTarget),
		}
		if opts.IntervalMS > 0 {
			htmlOpts = append(htmlOpts,
				html.WithScrambleInterval(time.Duration(opts.IntervalMS)*time.Millisecond))
		}
		return html.Render(runs, htmlOpts...), nil

	case render.FormatDOT:
		return []byte(dot.ToDOT(runs, dot.Options{Detailed: opts.Detailed, NoHover: opts.NoHover})), nil

	case render.FormatSVG:
		src := dot.ToDOT(runs, dot.Options{Detailed: opts.Detailed, NoHover: opts.NoHover})
		return dot.RenderSVG(src)

	case render.FormatPNG:
		src := dot.ToDOT(runs, dot.Options{Detailed: opts.Detailed, NoHover: opts.NoHover})
		return dot.RenderPNG(src)

	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// treeStats counts the runs and tooltips a tree will resolve to.
// Every node emits exactly one run, so the counts are derivable
// without resolving.
func treeStats(c *component.Component, noHover bool) (runs, hovers int) {
	if c == nil {
		return 0, 0
	}
	runs = 1
	if !noHover {
		if _, ok := action.HoverContent(c.HoverEvent); ok {
			hovers = 1
		}
	}
	for _, child := range c.Extra {
		childRuns, childHovers := treeStats(child, noHover)
		runs += childRuns
		hovers += childHovers
	}
	return runs, hovers
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
