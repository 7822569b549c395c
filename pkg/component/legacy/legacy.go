// Package legacy parses the pre-JSON formatting-code chat syntax
// ("§6Gold §l§nBold") into component trees.
//
// Legacy codes are a flat state machine: a section sign followed by one
// character switches color or toggles a decoration, and the change
// applies until the next color code or reset. Color codes implicitly
// clear all decorations; §r clears everything. The parser emits one
// component per styled text segment, attached as siblings under an
// unstyled root so no segment inherits style from another.
//
// Supported codes: 0-9 and a-f for colors, k (obfuscated), l (bold),
// m (strikethrough), n (underline), o (italic), r (reset). Codes are
// case-insensitive. An unknown code is consumed and ignored, matching
// the leniency of color resolution elsewhere: bad styling input never
// blocks rendering.
package legacy

import (
	"strings"

	"github.com/chatglass/chatglass/pkg/component"
)

// SectionSign is the wire-format code prefix.
const SectionSign = '§'

// codeColors maps legacy color codes to component color tokens.
var codeColors = map[rune]string{
	'0': "black",
	'1': "dark_blue",
	'2': "dark_green",
	'3': "dark_aqua",
	'4': "dark_red",
	'5': "dark_purple",
	'6': "gold",
	'7': "gray",
	'8': "dark_gray",
	'9': "blue",
	'a': "green",
	'b': "aqua",
	'c': "red",
	'd': "light_purple",
	'e': "yellow",
	'f': "white",
}

// legacyCodes is the full vocabulary recognized after a prefix.
const legacyCodes = "0123456789AaBbCcDdEeFfKkLlMmNnOoRr"

// segState is the accumulated style for the segment being built.
type segState struct {
	color     string
	bold      bool
	italic    bool
	underline bool
	strike    bool
	obfuscate bool
}

// Parse converts a legacy-coded string into a component tree. Text with
// no codes parses to a single text component; otherwise segments become
// siblings under an empty root. A trailing lone section sign is kept as
// literal text.
func Parse(s string) *component.Component {
	var segments []*component.Component
	var text strings.Builder
	st := segState{}

	flush := func() {
		if text.Len() == 0 {
			return
		}
		segments = append(segments, st.build(text.String()))
		text.Reset()
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != SectionSign || i+1 >= len(runes) {
			text.WriteRune(r)
			continue
		}

		code := runes[i+1]
		i++

		switch code {
		case 'k', 'K':
			flush()
			st.obfuscate = true
		case 'l', 'L':
			flush()
			st.bold = true
		case 'm', 'M':
			flush()
			st.strike = true
		case 'n', 'N':
			flush()
			st.underline = true
		case 'o', 'O':
			flush()
			st.italic = true
		case 'r', 'R':
			flush()
			st = segState{}
		default:
			if color, ok := codeColors[lower(code)]; ok {
				flush()
				// A color code also resets decorations. This is the
				// vanilla client behavior and the reason "§l§cX" is
				// plain red while "§c§lX" is bold red.
				st = segState{color: color}
			}
			// Unknown codes are consumed without effect.
		}
	}
	flush()

	switch len(segments) {
	case 0:
		return &component.Component{}
	case 1:
		return segments[0]
	default:
		return &component.Component{Extra: segments}
	}
}

// Translate rewrites prefix-coded text (commonly '&'-coded, as server
// configs write it) to section-sign codes and parses the result. Only a
// prefix followed by a valid code character is rewritten, so literal
// uses of the prefix survive: "Fish & Chips" stays intact.
func Translate(prefix rune, s string) *component.Component {
	runes := []rune(s)
	for i := 0; i+1 < len(runes); i++ {
		if runes[i] == prefix && strings.ContainsRune(legacyCodes, runes[i+1]) {
			runes[i] = SectionSign
		}
	}
	return Parse(string(runes))
}

// Strip removes all legacy codes and returns the bare text.
func Strip(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == SectionSign && i+1 < len(runes) {
			i++
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

// build produces the component for one text segment. Only styles the
// segment actually carries are set explicitly; segments sit under an
// unstyled root, so absent flags resolve to the defaults.
func (st segState) build(text string) *component.Component {
	c := component.Text(text)
	c.Color = st.color
	if st.bold {
		c.Bold = flagOn()
	}
	if st.italic {
		c.Italic = flagOn()
	}
	if st.underline {
		c.Underlined = flagOn()
	}
	if st.strike {
		c.Strikethrough = flagOn()
	}
	if st.obfuscate {
		c.Obfuscated = flagOn()
	}
	return c
}

func flagOn() *bool {
	b := true
	return &b
}

func lower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
