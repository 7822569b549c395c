package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chatglass/chatglass/pkg/pipeline"
	"github.com/chatglass/chatglass/pkg/render"
)

// readInput loads the component source from path, reading stdin when
// path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty or "-", it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input (stdin input
// falls back to the app name). If output carries a known format
// extension, that extension is stripped so per-format extensions can be
// appended.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return appName
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if _, err := render.ParseFormat(strings.TrimPrefix(ext, ".")); err == nil {
		return strings.TrimSuffix(output, ext)
	}
	if ext == ".txt" {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// artifactPath names the output file for one format. Text and term
// share the .txt extension, so the term file is qualified when both
// were requested.
func artifactPath(base string, format render.Format, requested []render.Format) string {
	if format == render.FormatTerm && slices.Contains(requested, render.FormatText) {
		return base + ".term" + format.Ext()
	}
	return base + format.Ext()
}

// artifactWriteParams bundles the inputs for writeArtifacts.
type artifactWriteParams struct {
	artifacts map[render.Format][]byte
	formats   []render.Format
	input     string // source path, used to derive output names
	output    string // --out flag; "" derives from input, "-" streams to stdout
	stats     pipeline.Stats
	cacheHit  bool
}

// writeArtifacts writes each rendered format to its own file and prints
// a summary. A single format honors the exact --out path ("-" streams
// to stdout with no decoration); multiple formats share a base path
// with per-format extensions.
func writeArtifacts(p artifactWriteParams) error {
	if len(p.formats) == 1 {
		return writeSingleArtifact(p)
	}
	if p.output == "-" {
		return fmt.Errorf("cannot stream multiple formats to stdout")
	}
	if p.input == "-" && p.output == "" {
		return fmt.Errorf("--out is required when reading stdin with multiple formats")
	}

	base := basePath(p.output, p.input)
	paths := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		path := artifactPath(base, format, p.formats)
		if err := writeFile(path, p.artifacts[format]); err != nil {
			return err
		}
		paths = append(paths, path)
	}

	printSuccess("Rendered %d formats", len(paths))
	for _, path := range paths {
		printFile(path)
	}
	printStats(p.stats.RunCount, p.stats.HoverCount, p.cacheHit)
	return nil
}

// writeSingleArtifact writes one format, streaming to stdout when the
// input came from stdin with no --out, or when --out is "-".
func writeSingleArtifact(p artifactWriteParams) error {
	format := p.formats[0]
	data := p.artifacts[format]

	path := p.output
	if path == "" && p.input != "-" {
		path = basePath("", p.input) + format.Ext()
	}
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	if err := writeFile(path, data); err != nil {
		return err
	}

	printSuccess("Rendered %s", format)
	printFile(path)
	printStats(p.stats.RunCount, p.stats.HoverCount, p.cacheHit)
	return nil
}

// writeFile writes data to path through openOutput.
func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
