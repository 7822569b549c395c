package resolve

import "github.com/chatglass/chatglass/pkg/component"

// Style is a fully determined presentation style. Every flag is
// concretely true or false and the color, when present, is a display
// color. A Style carries no inherit markers; once computed for a run
// it is never modified.
type Style struct {
	Bold          bool
	Italic        bool
	Underlined    bool
	Strikethrough bool
	Obfuscated    bool
	// Color is a "#RRGGBB" display color, or empty for the surface's
	// default foreground.
	Color string
}

// HasColor reports whether the style overrides the default foreground.
func (s Style) HasColor() bool { return s.Color != "" }

// IsPlain reports whether the style is indistinguishable from
// unstyled text. Surfaces use it to skip span wrapping.
func (s Style) IsPlain() bool { return s == Style{} }

// DefaultStyle is the implicit style at the root of a resolution pass:
// all flags false, no color.
func DefaultStyle() Style { return Style{} }

// namedColors is the fixed 16-token palette. Tokens outside this table
// that are not hex shapes resolve to no override.
var namedColors = map[string]string{
	"black":        "#000000",
	"dark_blue":    "#0000AA",
	"dark_green":   "#00AA00",
	"dark_aqua":    "#00AAAA",
	"dark_red":     "#AA0000",
	"dark_purple":  "#AA00AA",
	"gold":         "#FFAA00",
	"gray":         "#AAAAAA",
	"dark_gray":    "#555555",
	"blue":         "#5555FF",
	"green":        "#55FF55",
	"aqua":         "#55FFFF",
	"red":          "#FF5555",
	"light_purple": "#FF55FF",
	"yellow":       "#FFFF55",
	"white":        "#FFFFFF",
}

// ResolveColor maps a color token to a display color. Recognized names
// map through the fixed palette; a token shaped exactly like "#" plus
// six hex digits passes through verbatim. Everything else, including
// the empty token, reports ok false, meaning no override: malformed
// and unknown colors fall back to the inherited color instead of
// erroring, so unknown input never blocks rendering.
func ResolveColor(token string) (color string, ok bool) {
	if token == "" {
		return "", false
	}
	if c, ok := namedColors[token]; ok {
		return c, true
	}
	if isHexColor(token) {
		return token, true
	}
	return "", false
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for i := 1; i < 7; i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// MergeStyle layers a node's overrides onto its inherited style. Set
// flags replace the inherited value, unset flags inherit unchanged,
// and a resolvable color replaces the inherited color. Underline and
// strikethrough are independent; both apply when both end up true.
func MergeStyle(parent Style, node *component.Component) Style {
	out := parent
	if node.Bold != nil {
		out.Bold = *node.Bold
	}
	if node.Italic != nil {
		out.Italic = *node.Italic
	}
	if node.Underlined != nil {
		out.Underlined = *node.Underlined
	}
	if node.Strikethrough != nil {
		out.Strikethrough = *node.Strikethrough
	}
	if node.Obfuscated != nil {
		out.Obfuscated = *node.Obfuscated
	}
	if c, ok := ResolveColor(node.Color); ok {
		out.Color = c
	}
	return out
}
