// Package term renders resolved runs as ANSI styled terminal output.
//
// Styles degrade with the terminal's color profile: truecolor
// terminals show exact palette colors, simpler profiles approximate,
// and non-TTY output drops escape sequences entirely. Interactive
// intents are static here; copy and blocked clicks are marked with
// indicator glyphs so the user can see an action exists, and open_url
// runs can be wrapped in OSC 8 hyperlinks. Links inherit the
// surrounding run's color and decoration rather than restyling
// themselves.
package term

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/chatglass/chatglass/pkg/action"
	"github.com/chatglass/chatglass/pkg/resolve"
)

const (
	glyphCopy    = "⧉"
	glyphBlocked = "⊘"
)

var (
	styleGlyph   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleTooltip = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
)

// Option configures terminal rendering.
type Option func(*renderer)

type renderer struct {
	tooltips   bool
	indicators bool
	hyperlinks bool
}

// WithTooltips appends each run's hover content after the run, dimmed
// and bracketed. Tooltip text renders unstyled; a static surface has
// no pointer to anchor it to.
func WithTooltips() Option { return func(r *renderer) { r.tooltips = true } }

// WithoutIndicators suppresses the glyphs marking copy and blocked
// click runs.
func WithoutIndicators() Option { return func(r *renderer) { r.indicators = false } }

// WithHyperlinks wraps open_url runs in OSC 8 hyperlink sequences.
// Terminals without OSC 8 support show the text unchanged.
func WithHyperlinks() Option { return func(r *renderer) { r.hyperlinks = true } }

// Render renders runs for a terminal, root runs joined by newlines.
// Obfuscated runs contribute their current scrambled value.
func Render(runs []*resolve.Run, opts ...Option) string {
	r := renderer{indicators: true}
	for _, opt := range opts {
		opt(&r)
	}

	var b strings.Builder
	for i, root := range runs {
		if i > 0 {
			b.WriteByte('\n')
		}
		r.renderRun(&b, root)
	}
	return b.String()
}

func (r *renderer) renderRun(b *strings.Builder, run *resolve.Run) {
	if content := run.Content(); content != "" {
		text := styleFor(run.Style).Render(content)
		if r.hyperlinks && run.Click.Kind == action.ClickOpenURL {
			text = termenv.Hyperlink(run.Click.URL, text)
		}
		b.WriteString(text)
	}

	if r.indicators {
		switch run.Click.Kind {
		case action.ClickCopy:
			b.WriteString(styleGlyph.Render(glyphCopy))
		case action.ClickBlocked:
			b.WriteString(styleGlyph.Render(glyphBlocked))
		}
	}

	if r.tooltips && run.Hover != nil {
		b.WriteString(styleTooltip.Render(" [" + plainText(run.Hover.Content) + "]"))
	}

	for _, c := range run.Children {
		r.renderRun(b, c)
	}
}

// styleFor maps a resolved style onto lipgloss. Resolved styles arrive
// fully concrete, so every attribute is set explicitly.
func styleFor(s resolve.Style) lipgloss.Style {
	st := lipgloss.NewStyle().
		Bold(s.Bold).
		Italic(s.Italic).
		Underline(s.Underlined).
		Strikethrough(s.Strikethrough)
	if s.HasColor() {
		st = st.Foreground(lipgloss.Color(s.Color))
	}
	return st
}

func plainText(run *resolve.Run) string {
	var b strings.Builder
	run.Walk(func(r *resolve.Run) { b.WriteString(r.Content()) })
	return b.String()
}
