package component

import (
	"errors"
	"strings"
)

var (
	// ErrNilComponent is returned by [Component.Validate] and [Decode] when
	// the root component is nil or the input is empty. Resolution requires
	// a concrete root node.
	ErrNilComponent = errors.New("component must not be nil")

	// ErrNilChild is returned by [Component.Validate] when an entry of an
	// extra list is nil. Children must be an ordered sequence of concrete
	// components; a null entry indicates a malformed tree.
	ErrNilChild = errors.New("extra entries must not be nil")

	// ErrTreeCycle is returned by [Component.Validate] when a component is
	// reachable from itself. Trees decoded from JSON cannot cycle, but
	// caller-built trees can, and resolving one would never terminate.
	// Cycles are detected with depth-first search and gray/black coloring.
	ErrTreeCycle = errors.New("component tree contains a cycle")
)

// Component is a node in a rich chat component tree, the recursive
// "raw JSON text" format used for Minecraft chat, books, signs and MOTDs.
//
// Every field is optional. Style flags are tri-state pointers: nil means
// "inherit from the parent", a non-nil value is an explicit override in
// either direction. This distinction matters - bold:false on a child of a
// bold parent switches bold off, while an absent flag keeps it on.
//
// The zero value is a valid empty node: it renders no text of its own but
// still participates in style inheritance for its children.
type Component struct {
	// Text is the literal text carried by this node, rendered before any
	// children. An empty string renders nothing.
	Text string `json:"text,omitempty"`

	// Extra holds child components rendered after this node's own text.
	// Children inherit this node's resolved style, not its raw overrides.
	Extra []*Component `json:"extra,omitempty"`

	// Style flags. nil = inherit, otherwise explicit override.
	Bold          *bool `json:"bold,omitempty"`
	Italic        *bool `json:"italic,omitempty"`
	Underlined    *bool `json:"underlined,omitempty"`
	Strikethrough *bool `json:"strikethrough,omitempty"`
	Obfuscated    *bool `json:"obfuscated,omitempty"`

	// Color is a named token ("red", "dark_aqua", ...) or a "#RRGGBB" hex
	// string. Empty means inherit. Unknown tokens also fall back to the
	// inherited color during resolution rather than failing.
	Color string `json:"color,omitempty"`

	// ClickEvent describes what a click on this node's text should do.
	ClickEvent *ClickEvent `json:"clickEvent,omitempty"`

	// HoverEvent describes the tooltip shown while hovering this node.
	HoverEvent *HoverEvent `json:"hoverEvent,omitempty"`
}

// ClickEvent is a click action attached to a component. Action is one of
// the protocol vocabulary (open_url, copy_to_clipboard, open_file,
// run_command, suggest_command, change_page); unrecognized actions are
// carried through unchanged and classified as inert downstream.
type ClickEvent struct {
	Action string `json:"action"`
	Value  string `json:"value"`
}

// HoverEvent is a hover action attached to a component. Only show_text
// carries renderable content here; show_item and show_entity payloads are
// accepted on decode but treated as opaque.
//
// Value holds the show_text content as a component tree. Plain-string and
// array payloads are normalized into components during decode. A payload
// whose JSON shape cannot carry text (a number, a bare boolean) leaves
// Value nil, which downstream classification treats as "no tooltip".
type HoverEvent struct {
	Action string     `json:"action"`
	Value  *Component `json:"value,omitempty"`
}

// Text returns a text-only component, the normalized form of a bare
// string in the wire format.
func Text(s string) *Component {
	return &Component{Text: s}
}

// PlainText flattens the tree to its unstyled text content: this node's
// text followed by each child's plain text in order. Hover content is not
// included. A nil component yields an empty string.
func (c *Component) PlainText() string {
	var sb strings.Builder
	c.writePlainText(&sb)
	return sb.String()
}

func (c *Component) writePlainText(sb *strings.Builder) {
	if c == nil {
		return
	}
	sb.WriteString(c.Text)
	for _, child := range c.Extra {
		child.writePlainText(sb)
	}
}

// Validate checks the caller contract for a component tree and returns
// nil if the tree is resolvable. It verifies two constraints:
//
//  1. Every extra entry is non-nil (children form an ordered sequence
//     of concrete components)
//  2. No component is reachable from itself (the tree is acyclic)
//
// Returns ErrNilComponent for a nil root, ErrNilChild for a null child,
// or ErrTreeCycle when a cycle is detected. Sharing an immutable subtree
// between two parents is allowed; only true cycles are rejected.
//
// Hover content trees are validated too, since resolution recurses into
// them.
func (c *Component) Validate() error {
	if c == nil {
		return ErrNilComponent
	}

	const (
		white = iota
		gray
		black
	)

	color := make(map[*Component]int)

	var dfs func(n *Component) error
	dfs = func(n *Component) error {
		color[n] = gray
		for _, child := range n.Extra {
			if child == nil {
				return ErrNilChild
			}
			switch color[child] {
			case white:
				if err := dfs(child); err != nil {
					return err
				}
			case gray:
				return ErrTreeCycle
			}
		}
		if n.HoverEvent != nil && n.HoverEvent.Value != nil {
			hv := n.HoverEvent.Value
			switch color[hv] {
			case white:
				if err := dfs(hv); err != nil {
					return err
				}
			case gray:
				return ErrTreeCycle
			}
		}
		color[n] = black
		return nil
	}

	return dfs(c)
}
