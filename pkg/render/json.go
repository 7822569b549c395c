package render

import (
	"encoding/json"
	"time"

	"github.com/chatglass/chatglass/pkg/action"
	"github.com/chatglass/chatglass/pkg/resolve"
)

// JSONOption configures the JSON artifact via [JSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	seed     uint64
	interval time.Duration
	compact  bool
}

// WithJSONSeed records the scramble seed in the artifact, enabling
// reproducible re-rendering of obfuscated content.
func WithJSONSeed(seed uint64) JSONOption { return func(r *jsonRenderer) { r.seed = seed } }

// WithJSONInterval records the scramble interval the runs were
// resolved with.
func WithJSONInterval(d time.Duration) JSONOption { return func(r *jsonRenderer) { r.interval = d } }

// WithJSONCompact emits a single-line document instead of the default
// pretty-printed form.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonDoc struct {
	Seed       uint64    `json:"seed,omitempty"`
	IntervalMS int64     `json:"interval_ms,omitempty"`
	Runs       []jsonRun `json:"runs"`
}

type jsonRun struct {
	Key       string     `json:"key"`
	Text      string     `json:"text,omitempty"`
	Scrambled bool       `json:"scrambled,omitempty"`
	Source    string     `json:"source,omitempty"`
	Style     *jsonStyle `json:"style,omitempty"`
	Click     *jsonClick `json:"click,omitempty"`
	Hover     *jsonRun   `json:"hover,omitempty"`
	Children  []jsonRun  `json:"children,omitempty"`
}

type jsonStyle struct {
	Bold          bool   `json:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Underlined    bool   `json:"underlined,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
	Obfuscated    bool   `json:"obfuscated,omitempty"`
	Color         string `json:"color,omitempty"`
}

type jsonClick struct {
	Kind   string `json:"kind"`
	URL    string `json:"url,omitempty"`
	Target string `json:"target,omitempty"`
	Text   string `json:"text,omitempty"`
	Action string `json:"action,omitempty"`
}

// JSON exports runs as a structured document. This is the primary data
// interchange format, enabling:
//
//   - Inspection of resolved styles and classified intents
//   - Caching resolved output for fast re-rendering
//   - Integration with external tooling
//
// Obfuscated runs carry a snapshot of their current scrambled value
// plus the original source text; with a recorded seed the exact values
// are reproducible. JSON returns an error only if marshaling fails and
// does not modify the runs; it is safe to call concurrently with
// scramble timers, which swap values atomically per run.
func JSON(runs []*resolve.Run, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	doc := jsonDoc{
		Seed:       r.seed,
		IntervalMS: r.interval.Milliseconds(),
		Runs:       buildJSONRuns(runs),
	}

	if r.compact {
		return json.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func buildJSONRuns(runs []*resolve.Run) []jsonRun {
	out := make([]jsonRun, 0, len(runs))
	for _, r := range runs {
		out = append(out, buildJSONRun(r))
	}
	return out
}

func buildJSONRun(r *resolve.Run) jsonRun {
	jr := jsonRun{
		Key:   r.Key,
		Text:  r.Content(),
		Style: buildJSONStyle(r.Style),
		Click: buildJSONClick(r.Click),
	}
	if r.Scrambler != nil {
		jr.Scrambled = true
		jr.Source = r.Scrambler.Source()
	}
	if r.Hover != nil {
		h := buildJSONRun(r.Hover.Content)
		jr.Hover = &h
	}
	if len(r.Children) > 0 {
		jr.Children = make([]jsonRun, 0, len(r.Children))
		for _, c := range r.Children {
			jr.Children = append(jr.Children, buildJSONRun(c))
		}
	}
	return jr
}

func buildJSONStyle(s resolve.Style) *jsonStyle {
	if s.IsPlain() {
		return nil
	}
	return &jsonStyle{
		Bold:          s.Bold,
		Italic:        s.Italic,
		Underlined:    s.Underlined,
		Strikethrough: s.Strikethrough,
		Obfuscated:    s.Obfuscated,
		Color:         s.Color,
	}
}

func buildJSONClick(c action.Click) *jsonClick {
	if c.Kind == action.ClickNone {
		return nil
	}
	return &jsonClick{
		Kind:   c.Kind.String(),
		URL:    c.URL,
		Target: c.Target,
		Text:   c.Text,
		Action: c.Action,
	}
}
