// Package component models the recursive "raw JSON text" chat component
// format used by the Minecraft protocol.
//
// # Overview
//
// A chat message is a tree: each node may carry literal text, style
// overrides (bold, italic, underlined, strikethrough, obfuscated, color),
// interaction events (click, hover), and an ordered list of child nodes
// under extra. Children inherit the style their parent resolved to, with
// their own overrides applied on top. This package holds the tree model
// and the lenient wire decoder; style resolution lives in
// [github.com/chatglass/chatglass/pkg/resolve].
//
// # Wire Shapes
//
// The wire format spells the same tree three ways, and [Decode] accepts
// all of them at any nesting level:
//
//	"hello"                      a bare string, text-only component
//	{"text":"hello","bold":true} the object form
//	["hello", {"text":"!"}]      a list: first entry hosts the rest
//
// # Tri-State Style Flags
//
// Style flags are *bool, not bool: nil means "inherit from the parent",
// while &false is an explicit override that switches the flag off even
// under a parent that has it on. Round-tripping through JSON preserves
// the distinction (absent key vs false).
//
// # Basic Usage
//
//	c, err := component.Decode(data)
//	if err != nil {
//	    return err
//	}
//	if err := c.Validate(); err != nil {
//	    return err
//	}
//	fmt.Println(c.PlainText())
//
// Trees may also be built directly; the zero Component is a valid empty
// node and [Text] builds a text-only leaf.
package component
