package term

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/chatglass/chatglass/pkg/component"
	"github.com/chatglass/chatglass/pkg/resolve"
)

func boolPtr(b bool) *bool { return &b }

func mustResolve(t *testing.T, roots []*component.Component, opts resolve.Options) []*resolve.Run {
	t.Helper()
	runs, err := resolve.ResolveAll(roots, opts)
	if err != nil {
		t.Fatalf("ResolveAll() error: %v", err)
	}
	t.Cleanup(func() { resolve.ReleaseAll(runs) })
	return runs
}

func TestRenderPlainContent(t *testing.T) {
	// Non-TTY test output uses the Ascii profile, so styled runs come
	// back as bare text.
	lipgloss.SetColorProfile(termenv.Ascii)

	runs := mustResolve(t, []*component.Component{
		{
			Text: "Hello ",
			Extra: []*component.Component{
				{Text: "world", Bold: boolPtr(true), Color: "red"},
			},
		},
		component.Text("second"),
	}, resolve.Options{})

	got := Render(runs)
	if !strings.Contains(got, "Hello world") {
		t.Fatalf("Render() = %q, want it to contain %q", got, "Hello world")
	}
	if !strings.Contains(got, "\nsecond") {
		t.Fatalf("Render() = %q, want root runs separated by newline", got)
	}
}

func TestRenderEmitsEscapesWithColorProfile(t *testing.T) {
	lipgloss.SetColorProfile(termenv.TrueColor)
	defer lipgloss.SetColorProfile(termenv.Ascii)

	runs := mustResolve(t, []*component.Component{
		{Text: "styled", Bold: boolPtr(true), Color: "red"},
	}, resolve.Options{})

	got := Render(runs)
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("Render() = %q, want ANSI escapes under truecolor", got)
	}
	if !strings.Contains(got, "styled") {
		t.Fatalf("Render() = %q, want the text preserved", got)
	}
}

func TestRenderIndicators(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	runs := mustResolve(t, []*component.Component{
		{Text: "token", ClickEvent: &component.ClickEvent{Action: "copy_to_clipboard", Value: "x"}},
		{Text: "cmd", ClickEvent: &component.ClickEvent{Action: "run_command", Value: "/x"}},
	}, resolve.Options{})

	got := Render(runs)
	if !strings.Contains(got, "token"+glyphCopy) {
		t.Fatalf("Render() = %q, want copy glyph after copy run", got)
	}
	if !strings.Contains(got, "cmd"+glyphBlocked) {
		t.Fatalf("Render() = %q, want blocked glyph after blocked run", got)
	}

	bare := Render(runs, WithoutIndicators())
	if strings.Contains(bare, glyphCopy) || strings.Contains(bare, glyphBlocked) {
		t.Fatalf("Render(WithoutIndicators) = %q, want no glyphs", bare)
	}
}

func TestRenderHyperlinks(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	runs := mustResolve(t, []*component.Component{
		{Text: "docs", ClickEvent: &component.ClickEvent{Action: "open_url", Value: "https://example.com"}},
	}, resolve.Options{})

	got := Render(runs, WithHyperlinks())
	if !strings.Contains(got, "\x1b]8;;https://example.com") {
		t.Fatalf("Render(WithHyperlinks) = %q, want OSC 8 sequence", got)
	}

	plain := Render(runs)
	if strings.Contains(plain, "\x1b]8;;") {
		t.Fatalf("Render() = %q, want no hyperlink sequences by default", plain)
	}
}

func TestRenderTooltips(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	runs := mustResolve(t, []*component.Component{
		{
			Text: "host",
			HoverEvent: &component.HoverEvent{
				Action: "show_text",
				Value: &component.Component{
					Text:  "tip ",
					Extra: []*component.Component{{Text: "detail"}},
				},
			},
		},
	}, resolve.Options{})

	got := Render(runs, WithTooltips())
	if !strings.Contains(got, "[tip detail]") {
		t.Fatalf("Render(WithTooltips) = %q, want bracketed tooltip text", got)
	}

	bare := Render(runs)
	if strings.Contains(bare, "tip detail") {
		t.Fatalf("Render() = %q, want tooltips omitted by default", bare)
	}
}

func TestRenderScrambledSnapshot(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	runs := mustResolve(t, []*component.Component{
		{Text: "hi", Obfuscated: boolPtr(true)},
	}, resolve.Options{Seed: 3})

	got := Render(runs)
	if len(got) != 2 {
		t.Fatalf("Render() = %q, want a 2-character scramble", got)
	}
	if got == "hi" {
		t.Fatalf("Render() = %q, want scrambled content", got)
	}
}
