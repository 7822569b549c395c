// Package render turns resolved run trees into output artifacts.
//
// # Overview
//
// This package contains the rendering surfaces that consume resolved
// runs. It provides:
//
//   - Plain text and JSON artifacts (in this package)
//   - ANSI terminal output (in [term] subpackage)
//   - Self-contained interactive HTML (in [html] subpackage)
//   - Resolution-tree diagrams via Graphviz (in [dot] subpackage)
//
// # Formats
//
// [Format] names every supported output format. CLI and server
// surfaces parse user input with [ParseFormat] and dispatch to the
// matching renderer.
//
//	runs, err := resolve.ResolveAll(roots, resolve.Options{})
//	if err != nil {
//		return err
//	}
//	defer resolve.ReleaseAll(runs)
//
//	fmt.Println(render.Text(runs))
//
// # Interactivity
//
// Static formats snapshot the current content of every run, including
// the live value of obfuscated runs. The HTML surface additionally
// re-creates hover tooltips, copy actions and the scramble animation
// client-side, honoring the same intent contract the terminal preview
// implements natively.
//
// [term]: github.com/chatglass/chatglass/pkg/render/term
// [html]: github.com/chatglass/chatglass/pkg/render/html
// [dot]: github.com/chatglass/chatglass/pkg/render/dot
package render
