package resolve

import (
	"hash/fnv"
	"strconv"
	"time"

	"github.com/chatglass/chatglass/pkg/action"
	"github.com/chatglass/chatglass/pkg/component"
	"github.com/chatglass/chatglass/pkg/obfuscate"
)

// Options configures a resolution pass. The zero value is ready to
// use: timers disabled, hover on, default link presentation,
// nondeterministic scrambling.
type Options struct {
	// Interval is the rescheduling period for obfuscated text. Zero or
	// negative disables timers: each obfuscated node scrambles exactly
	// once at bind time and never changes again.
	Interval time.Duration

	// NoHover disables hover resolution. No Run carries a Hover and
	// hover subtrees are never walked.
	NoHover bool

	// LinkTarget is an opaque hint stamped on open_url intents for how
	// navigation should present. Empty means the surface default, a
	// new independent context.
	LinkTarget string

	// Seed, when nonzero, makes scrambled values deterministic: each
	// obfuscated node derives its own random stream from Seed and its
	// run key, so values are reproducible regardless of timer
	// interleaving. Zero scrambles nondeterministically.
	Seed uint64

	// OnScramble, when set, is invoked after every scramble pass with
	// the owning run's key and the new value. Interval-driven passes
	// invoke it on the timer goroutine.
	OnScramble func(key, value string)
}

// Run is the unit handed to a rendering surface: one node's resolved
// style and content plus its classified intents. Runs form a tree
// mirroring the component tree, are built fresh on every resolution
// pass and never mutated afterwards. The only live state is the
// scrambled value inside the Scrambler.
type Run struct {
	// Key addresses the run stably across passes over the same input:
	// sibling indices joined by dots ("0", "0.2", "0.2.1"), with a
	// ".hover" element for hover content roots.
	Key string

	Style Style

	// Text is the static text content. Empty for nodes without text
	// and for obfuscated nodes, whose content lives in Scrambler.
	Text string

	// Scrambler is non-nil exactly when the node has text and resolved
	// obfuscated true. It is already started; callers must Release the
	// run when done with it.
	Scrambler *obfuscate.Scrambler

	Click action.Click

	// Hover is non-nil when the node carries a supported hover event
	// and hover resolution is enabled.
	Hover *Hover

	// Children mirror the node's extra entries in order. They are
	// painted after the run's own content.
	Children []*Run
}

// Hover is a resolved tooltip. Its content is resolved with a fresh
// default style, so it looks the same under any host run.
//
// Placement contract for surfaces: the tooltip anchors to the most
// recent pointer position observed over the host run, offset by a
// small margin, and is visible only while the pointer stays over the
// host run's region.
type Hover struct {
	Content *Run
}

// Resolve turns a component tree into a Run tree. The input is
// validated first and treated as read-only; malformed trees fail fast
// with a component sentinel error, while unknown colors and actions
// inside a well-formed tree degrade silently per the leniency policy.
//
// Obfuscated nodes come back with started Scramblers. Callers own the
// returned tree and must call Release when unmounting it.
func Resolve(root *component.Component, opts Options) (*Run, error) {
	if err := root.Validate(); err != nil {
		return nil, err
	}
	rs := &resolver{opts: opts}
	return rs.resolve(root, DefaultStyle(), "0"), nil
}

// ResolveAll resolves an ordered list of roots, keyed "0", "1", and so
// on. On a validation failure, runs already produced for earlier roots
// are released before returning.
func ResolveAll(roots []*component.Component, opts Options) ([]*Run, error) {
	rs := &resolver{opts: opts}
	runs := make([]*Run, 0, len(roots))
	for i, root := range roots {
		if err := root.Validate(); err != nil {
			ReleaseAll(runs)
			return nil, err
		}
		runs = append(runs, rs.resolve(root, DefaultStyle(), strconv.Itoa(i)))
	}
	return runs, nil
}

type resolver struct {
	opts Options
}

// resolve processes one node: merge style, classify click, classify
// hover, bind the text payload, then recurse into extra with this
// node's resolved style. A node with neither text nor children still
// yields a Run so its key and style survive the pass.
func (rs *resolver) resolve(node *component.Component, inherited Style, key string) *Run {
	style := MergeStyle(inherited, node)

	click := action.ClassifyClick(node.ClickEvent)
	if click.Kind == action.ClickOpenURL {
		click.Target = rs.opts.LinkTarget
	}

	run := &Run{Key: key, Style: style, Click: click}

	if !rs.opts.NoHover {
		if content, ok := action.HoverContent(node.HoverEvent); ok {
			run.Hover = &Hover{Content: rs.resolve(content, DefaultStyle(), key+".hover")}
		}
	}

	if node.Text != "" {
		if style.Obfuscated {
			run.Scrambler = rs.newScrambler(node.Text, key)
			run.Scrambler.Start()
		} else {
			run.Text = node.Text
		}
	}

	for i, child := range node.Extra {
		run.Children = append(run.Children, rs.resolve(child, style, key+"."+strconv.Itoa(i)))
	}
	return run
}

func (rs *resolver) newScrambler(text, key string) *obfuscate.Scrambler {
	opts := make([]obfuscate.Option, 0, 2)
	if rs.opts.Seed != 0 {
		opts = append(opts, obfuscate.WithSeed(runSeed(rs.opts.Seed, key)))
	}
	if fn := rs.opts.OnScramble; fn != nil {
		k := key
		opts = append(opts, obfuscate.WithNotify(func(v string) { fn(k, v) }))
	}
	return obfuscate.New(text, rs.opts.Interval, opts...)
}

// runSeed folds the run key into the pass seed so every obfuscated
// node gets its own deterministic stream.
func runSeed(seed uint64, key string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return seed ^ h.Sum64()
}

// Content returns the run's current text: the live scrambled value for
// obfuscated runs, the static text otherwise.
func (r *Run) Content() string {
	if r.Scrambler != nil {
		return r.Scrambler.Value()
	}
	return r.Text
}

// Walk visits the run and its children in paint order (the run's own
// content first, then each child subtree). Hover content is a separate
// presentation and is not visited.
func (r *Run) Walk(fn func(*Run)) {
	if r == nil {
		return
	}
	fn(r)
	for _, c := range r.Children {
		c.Walk(fn)
	}
}

// Flatten returns the run and its descendants in paint order.
func (r *Run) Flatten() []*Run {
	var out []*Run
	r.Walk(func(run *Run) { out = append(out, run) })
	return out
}

// Release cancels every pending scramble timer in the run, its
// children and its hover content. Releasing is idempotent and must
// happen exactly when the run tree is unmounted; a released tree keeps
// its last values but never changes again.
func (r *Run) Release() {
	if r == nil {
		return
	}
	if r.Scrambler != nil {
		r.Scrambler.Stop()
	}
	if r.Hover != nil {
		r.Hover.Content.Release()
	}
	for _, c := range r.Children {
		c.Release()
	}
}

// ReleaseAll releases a list of root runs.
func ReleaseAll(runs []*Run) {
	for _, r := range runs {
		r.Release()
	}
}
