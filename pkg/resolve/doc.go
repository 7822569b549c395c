// Package resolve turns recursive chat component trees into flat,
// fully styled, interactive runs.
//
// # Overview
//
// A component tree carries partial information: tri-state style flags
// that may inherit from the parent, color tokens that may be names or
// hex shapes or garbage, click and hover actions from a protocol
// vocabulary wider than any one surface supports. A resolution pass
// walks the tree once and removes all of that ambiguity. The output is
// a tree of Runs in which every style flag is concretely true or
// false, every color is a display color, every click is a classified
// intent and every obfuscated text node owns a live scramble handle.
//
// # Resolution Order
//
// Each node resolves in a fixed order: merge the node's style
// overrides onto the inherited style, classify the click event,
// classify the hover event and resolve its content under a fresh
// default style, bind the text payload (literal text, or a started
// Scrambler when the resolved obfuscated flag is true), then resolve
// each extra child with this node's resolved style as its inherited
// style. Children inherit resolved values, never the node's raw
// overrides. A node with neither text nor children still produces a
// Run so its position and style survive the pass.
//
// # Leniency
//
// Inside a well-formed tree nothing errors: unknown color tokens keep
// the inherited color, unrecognized click actions classify as none,
// unsupported hover actions drop the tooltip. The only failures are
// caller contract violations (nil nodes, cyclic trees), rejected up
// front by validation before any run is built.
//
// # Lifecycle
//
// Every pass builds a fresh Run tree and never mutates a previous one;
// re-resolving the same input yields runs with the same keys. The one
// piece of live state is the scrambled value inside each Scrambler,
// which updates on its own timer until the tree is released. Callers
// must Release a run tree when unmounting it, or pending scramble
// timers leak.
//
// # Basic Usage
//
//	root, err := component.Decode(raw)
//	if err != nil {
//		return err
//	}
//	run, err := resolve.Resolve(root, resolve.Options{
//		Interval: 80 * time.Millisecond,
//	})
//	if err != nil {
//		return err
//	}
//	defer run.Release()
//
//	run.Walk(func(r *resolve.Run) {
//		surface.Paint(r.Style, r.Content())
//	})
package resolve
