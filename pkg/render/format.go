package render

import (
	"strings"

	"github.com/chatglass/chatglass/pkg/errors"
)

// Format identifies an output format.
type Format string

const (
	// FormatText is unstyled plain text, one line per root run.
	FormatText Format = "text"
	// FormatJSON is the structured run artifact, the primary data
	// interchange format.
	FormatJSON Format = "json"
	// FormatTerm is ANSI styled terminal output.
	FormatTerm Format = "term"
	// FormatHTML is a self-contained interactive HTML document.
	FormatHTML Format = "html"
	// FormatDOT is a Graphviz DOT description of the resolution tree.
	FormatDOT Format = "dot"
	// FormatSVG is the DOT diagram rendered to SVG.
	FormatSVG Format = "svg"
	// FormatPNG is the DOT diagram rendered to PNG.
	FormatPNG Format = "png"
)

// Formats lists every supported format name, in display order.
func Formats() []string {
	return []string{
		string(FormatText),
		string(FormatJSON),
		string(FormatTerm),
		string(FormatHTML),
		string(FormatDOT),
		string(FormatSVG),
		string(FormatPNG),
	}
}

// ParseFormat parses a user-supplied format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatTerm:
		return FormatTerm, nil
	case FormatHTML:
		return FormatHTML, nil
	case FormatDOT:
		return FormatDOT, nil
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"unknown format %q (supported: %s)", s, strings.Join(Formats(), ", "))
}

// Ext returns the conventional file extension for the format,
// including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatHTML:
		return ".html"
	case FormatDOT:
		return ".dot"
	case FormatSVG:
		return ".svg"
	case FormatPNG:
		return ".png"
	default:
		return ".txt"
	}
}

// Binary reports whether the format produces bytes that should not be
// written to a terminal.
func (f Format) Binary() bool { return f == FormatPNG }

// ContentType returns the MIME type for serving the format over HTTP.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	default:
		return "text/plain; charset=utf-8"
	}
}
