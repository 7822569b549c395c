// Package pkg provides the core libraries for Chatglass chat rendering.
//
// # Overview
//
// Chatglass renders Minecraft raw JSON text, the chat component format
// the game uses for chat messages, books, signs and titles, on surfaces
// the game never reaches. The pkg directory is organized into three main
// areas:
//
//  1. Decoding ([component], [component/legacy]) - parse input into trees
//  2. Resolution ([resolve], [action], [obfuscate]) - styles and intents
//  3. Rendering ([render] and subpackages) - output formats
//
// plus shared infrastructure ([cache], [pipeline], [store], [errors],
// [observability], [buildinfo]).
//
// # Architecture
//
// The typical data flow through Chatglass:
//
//	JSON component / legacy § text
//	         ↓
//	    [component] package (decode + validate)
//	         ↓
//	    [resolve] package (style inheritance, click/hover intents)
//	         ↓
//	    [render] package (format-specific surfaces)
//	         ↓
//	    text/json/term/html/dot/svg/png output
//
// # Quick Start
//
// Decode a component and render it for a terminal:
//
//	import (
//	    "github.com/chatglass/chatglass/pkg/component"
//	    "github.com/chatglass/chatglass/pkg/render/term"
//	    "github.com/chatglass/chatglass/pkg/resolve"
//	)
//
//	// 1. Decode
//	tree, _ := component.Decode([]byte(`{"text":"Hello","color":"gold"}`))
//
//	// 2. Resolve into runs
//	run, _ := resolve.Resolve(tree, resolve.Options{Seed: 42})
//	defer run.Release()
//
//	// 3. Render
//	fmt.Println(term.Render([]*resolve.Run{run}))
//
// # Main Packages
//
// ## Decoding
//
// [component] - The raw JSON text model: component trees with text,
// styling, click and hover events. Decoding accepts the wire format's
// shorthands (bare strings, arrays) and normalizes them; validation
// separates malformed trees from merely unknown values.
//
// [component/legacy] - Parser for the pre-JSON formatting-code syntax
// ("§6Gold §lBold") that still appears in server MOTDs and older tooling.
//
// ## Resolution
//
// [resolve] - Turns component trees into styled runs: style inheritance,
// color normalization, click classification and hover subtree resolution.
// Obfuscated text binds to live scramblers.
//
// [action] - Classifies protocol click and hover events into the
// renderer-agnostic intents surfaces actually honor.
//
// [obfuscate] - The §k scrambler: random replacement text re-rolled on a
// timer, with optional seeding for reproducible output.
//
// ## Rendering
//
// [render] - Format registry plus the plain-text and canonical JSON
// renderers. Each remaining format has its own subpackage:
//
//   - [render/term]: ANSI styled terminal output via lipgloss
//   - [render/html]: standalone HTML documents with CSS styling and
//     client-side scramble animation
//   - [render/dot]: Graphviz DOT diagrams of the component structure,
//     plus SVG and PNG rasterization
//
// ## Infrastructure
//
// [pipeline] - The decode → resolve → render pipeline with caching,
// shared by CLI and API so both entry points behave identically.
//
// [cache] - Content-addressed caching of stage outputs with file,
// memory, Redis and null backends.
//
// [store] - Named document persistence for the API server (memory and
// MongoDB backends).
//
// [errors] - Structured error codes shared across CLI and API.
//
// [observability] - Optional hooks for metrics and tracing without
// hard backend dependencies.
//
// [buildinfo] - Build-time version information set via ldflags.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/resolve/...  # Specific package
//	go test -run Example       # Examples only
//
// [component]: https://pkg.go.dev/github.com/chatglass/chatglass/pkg/component
// [component/legacy]: https://pkg.go.dev/github.com/chatglass/chatglass/pkg/component/legacy
// [resolve]: https://pkg.go.dev/github.com/chatglass/chatglass/pkg/resolve
// [action]: https://pkg.go.dev/github.com/chatglass/chatglass/pkg/action
// [obfuscate]: https://pkg.go.dev/github.com/chatglass/chatglass/pkg/obfuscate
// [render]: https://pkg.go.dev/github.com/chatglass/chatglass/pkg/render
// [render/term]: https://pkg.go.dev/github.com/chatglass/chatglass/pkg/render/term
// [render/html]: https://pkg.go.dev/github.com/chatglass/chatglass/pkg/render/html
// [render/dot]: https://pkg.go.dev/github.com/chatglass/chatglass/pkg/render/dot
// [pipeline]: https://pkg.go.dev/github.com/chatglass/chatglass/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/chatglass/chatglass/pkg/cache
// [store]: https://pkg.go.dev/github.com/chatglass/chatglass/pkg/store
// [errors]: https://pkg.go.dev/github.com/chatglass/chatglass/pkg/errors
// [observability]: https://pkg.go.dev/github.com/chatglass/chatglass/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/chatglass/chatglass/pkg/buildinfo
package pkg
