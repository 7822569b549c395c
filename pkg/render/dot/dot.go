// Package dot renders the resolution tree as a Graphviz diagram.
//
// Every run becomes a box colored with its resolved display color,
// children hang below their parent, and hover content attaches with
// dashed edges. The diagram is a debugging surface: it shows what the
// resolver actually produced, including inherited styles and
// classified intents that are invisible in flat text output.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/chatglass/chatglass/pkg/action"
	"github.com/chatglass/chatglass/pkg/resolve"
)

// Options configures diagram generation.
type Options struct {
	// Detailed includes classified intents and style flags in node
	// labels. When false, only the key and content are shown.
	Detailed bool
	// NoHover omits hover content subtrees from the diagram.
	NoHover bool
}

const maxLabelContent = 24

// ToDOT converts resolved runs to Graphviz DOT format. The resulting
// string can be rendered with [RenderSVG] or [RenderPNG].
//
// Obfuscated runs are drawn with dashed outlines; hover content
// attaches to its host with a dashed edge.
func ToDOT(runs []*resolve.Run, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph chat {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, root := range runs {
		writeNodes(&buf, root, opts)
	}
	buf.WriteString("\n")
	for _, root := range runs {
		writeEdges(&buf, root, opts)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNodes(buf *bytes.Buffer, run *resolve.Run, opts Options) {
	attrs := fmtAttrs(run, fmtLabel(run, opts.Detailed))
	fmt.Fprintf(buf, "  %q [%s];\n", run.Key, strings.Join(attrs, ", "))

	if run.Hover != nil && !opts.NoHover {
		writeNodes(buf, run.Hover.Content, opts)
	}
	for _, c := range run.Children {
		writeNodes(buf, c, opts)
	}
}

func writeEdges(buf *bytes.Buffer, run *resolve.Run, opts Options) {
	if run.Hover != nil && !opts.NoHover {
		fmt.Fprintf(buf, "  %q -> %q [style=dashed, label=\"hover\", fontsize=10];\n",
			run.Key, run.Hover.Content.Key)
		writeEdges(buf, run.Hover.Content, opts)
	}
	for _, c := range run.Children {
		fmt.Fprintf(buf, "  %q -> %q;\n", run.Key, c.Key)
		writeEdges(buf, c, opts)
	}
}

func fmtLabel(run *resolve.Run, detailed bool) string {
	parts := []string{run.Key}
	if content := run.Content(); content != "" {
		parts = append(parts, strconv.Quote(truncate(content)))
	}

	if detailed {
		if flags := fmtFlags(run.Style); flags != "" {
			parts = append(parts, flags)
		}
		if run.Click.Kind != action.ClickNone {
			parts = append(parts, "click: "+run.Click.Kind.String())
		}
	}

	return strings.Join(parts, "\n")
}

func fmtFlags(s resolve.Style) string {
	var flags []string
	if s.Bold {
		flags = append(flags, "bold")
	}
	if s.Italic {
		flags = append(flags, "italic")
	}
	if s.Underlined {
		flags = append(flags, "underlined")
	}
	if s.Strikethrough {
		flags = append(flags, "strikethrough")
	}
	if s.Obfuscated {
		flags = append(flags, "obfuscated")
	}
	return strings.Join(flags, ",")
}

func fmtAttrs(run *resolve.Run, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if run.Style.HasColor() {
		attrs = append(attrs,
			fmt.Sprintf("fillcolor=%q", run.Style.Color),
			fmt.Sprintf("fontcolor=%s", fontColorFor(run.Style.Color)))
	}
	if run.Style.Obfuscated {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxLabelContent {
		return s
	}
	return string(runes[:maxLabelContent-1]) + "…"
}

// fontColorFor keeps labels readable: dark fills get white text.
func fontColorFor(hex string) string {
	if len(hex) != 7 {
		return "black"
	}
	r, errR := strconv.ParseUint(hex[1:3], 16, 16)
	g, errG := strconv.ParseUint(hex[3:5], 16, 16)
	b, errB := strconv.ParseUint(hex[5:7], 16, 16)
	if errR != nil || errG != nil || errB != nil {
		return "black"
	}
	if 299*r+587*g+114*b < 128_000 {
		return "white"
	}
	return "black"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return renderGraph(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderGraph(dot, graphviz.PNG)
}

func renderGraph(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
