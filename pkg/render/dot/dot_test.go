package dot

import (
	"strings"
	"testing"

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

func TestToDOT(t *testing.T) {
	runs := mustResolve(t, []*component.Component{
		{
			Text: "Hello ",
			Extra: []*component.Component{
				{Text: "world", Bold: boolPtr(true), Color: "red"},
			},
		},
	}, resolve.Options{})

	out := ToDOT(runs, Options{})
	for _, want := range []string{
		"digraph chat {",
		"rankdir=TB;",
		"\"0\" [",
		"\"0.0\" [",
		"\"0\" -> \"0.0\";",
		"fillcolor=\"#FF5555\"",
		"\\\"world\\\"",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, out)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	runs := mustResolve(t, []*component.Component{
		{
			Text:       "docs",
			Bold:       boolPtr(true),
			ClickEvent: &component.ClickEvent{Action: "open_url", Value: "https://example.com"},
		},
	}, resolve.Options{})

	out := ToDOT(runs, Options{Detailed: true})
	if !strings.Contains(out, "click: open_url") {
		t.Errorf("detailed label missing click intent:\n%s", out)
	}
	if !strings.Contains(out, "bold") {
		t.Errorf("detailed label missing style flags:\n%s", out)
	}

	plain := ToDOT(runs, Options{})
	if strings.Contains(plain, "click: open_url") {
		t.Errorf("plain label leaks intent detail:\n%s", plain)
	}
}

func TestToDOTHoverEdges(t *testing.T) {
	runs := mustResolve(t, []*component.Component{
		{
			Text:       "host",
			HoverEvent: &component.HoverEvent{Action: "show_text", Value: component.Text("tip")},
		},
	}, resolve.Options{})

	out := ToDOT(runs, Options{})
	if !strings.Contains(out, "\"0\" -> \"0.hover\" [style=dashed") {
		t.Errorf("hover edge missing:\n%s", out)
	}
	if !strings.Contains(out, "\"0.hover\" [") {
		t.Errorf("hover node missing:\n%s", out)
	}

	noHover := ToDOT(runs, Options{NoHover: true})
	if strings.Contains(noHover, "0.hover") {
		t.Errorf("NoHover still emits hover subtree:\n%s", noHover)
	}
}

func TestToDOTObfuscatedDashed(t *testing.T) {
	runs := mustResolve(t, []*component.Component{
		{Text: "secret", Obfuscated: boolPtr(true)},
	}, resolve.Options{Seed: 2})

	out := ToDOT(runs, Options{})
	if !strings.Contains(out, "style=\"rounded,filled,dashed\"") {
		t.Errorf("obfuscated run not dashed:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", 60)
	got := truncate(long)
	if len([]rune(got)) != maxLabelContent {
		t.Fatalf("truncate length = %d, want %d", len([]rune(got)), maxLabelContent)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("truncate(%q) = %q, want ellipsis suffix", long, got)
	}
	if truncate("short") != "short" {
		t.Fatalf("truncate modified a short string")
	}
}

func TestFontColorFor(t *testing.T) {
	tests := []struct {
		hex  string
		want string
	}{
		{"#000000", "white"},
		{"#0000AA", "white"},
		{"#FFFFFF", "black"},
		{"#FFFF55", "black"},
		{"bogus", "black"},
	}

	for _, tt := range tests {
		if got := fontColorFor(tt.hex); got != tt.want {
			t.Errorf("fontColorFor(%q) = %q, want %q", tt.hex, got, tt.want)
		}
	}
}
