package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chatglass/chatglass/internal/config"
	"github.com/chatglass/chatglass/pkg/pipeline"
	"github.com/chatglass/chatglass/pkg/render"
)

// inspectCommand creates the inspect command for structural diagrams.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		format   string
		output   string
		legacy   bool
		detailed bool
		noHover  bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [file|-]",
		Short: "Diagram a component tree with Graphviz",
		Long: `Diagram a component tree with Graphviz.

Inspect renders the decoded tree as a node-link diagram instead of
styled text: every component becomes a node, child and hover edges show
the structure, and --detailed adds style and click information to node
labels. Formats: dot (Graphviz source), svg, png.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			switch f {
			case render.FormatDOT, render.FormatSVG, render.FormatPNG:
			default:
				return fmt.Errorf("inspect format must be dot, svg, or png (got %s)", f)
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := optionsFromConfig(cfg)
			opts.Legacy = legacy
			opts.Detailed = detailed
			opts.NoHover = noHover
			opts.Formats = []render.Format{f}

			return c.runInspect(cmd.Context(), cfg, args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "diagram format: dot (default), svg, png")
	cmd.Flags().StringVarP(&output, "out", "o", "", "output file (dot defaults to stdout, svg/png to a file next to the input)")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "treat input as legacy §-coded text")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include style and click details in node labels")
	cmd.Flags().BoolVar(&noHover, "no-hover", false, "omit hover subtrees from the diagram")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runInspect decodes the source and renders a structural diagram.
func (c *CLI) runInspect(ctx context.Context, cfg *config.Config, input string, opts pipeline.Options, output string, noCache bool) error {
	data, err := readInput(input)
	if err != nil {
		return fmt.Errorf("read input %s: %w", input, err)
	}
	opts.Input = data

	// DOT source defaults to stdout so it can pipe straight into
	// graphviz tooling.
	format := opts.Formats[0]
	if output == "" && format == render.FormatDOT {
		output = "-"
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Diagramming %s...", format))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Diagram failed")
		return fmt.Errorf("inspect: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		stats:     result.Stats,
		cacheHit:  result.CacheInfo.RenderHit,
	})
}
