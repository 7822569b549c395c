package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chatglass/chatglass/internal/config"
	"github.com/chatglass/chatglass/pkg/pipeline"
)

// renderCommand creates the render command for producing artifacts from
// a component source.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsFlag []string
		output      string
		legacy      bool
		title       string
		noCache     bool
		refresh     bool
	)
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render a chat component to one or more output formats",
		Long: `Render a chat component to one or more output formats.

The input is a raw JSON text component, or legacy §-coded text with
--legacy; "-" reads from stdin. Formats: json (resolved runs), text,
term (ANSI), html, dot, svg, png. Output paths derive from the input
name unless --out is given; a single format with --out - streams to
stdout.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			formats, err := parseFormats(formatsFlag, cfg.Render.Format)
			if err != nil {
				return err
			}

			opts := optionsFromConfig(cfg)
			flags.apply(cmd, &opts)
			opts.Legacy = legacy
			opts.Formats = formats
			opts.Title = title
			opts.Refresh = refresh

			return c.runRender(cmd.Context(), cfg, args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringArrayVarP(&formatsFlag, "format", "f", nil, "output format(s): json (default), text, term, html, dot, svg, png (repeatable or comma-separated)")
	cmd.Flags().StringVarP(&output, "out", "o", "", "output file (single format) or base path (multiple); - for stdout")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "treat input as legacy §-coded text")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached results exist")

	// Render flags
	cmd.Flags().StringVar(&title, "title", "", "page title for the html format")
	flags.register(cmd)

	return cmd
}

// runRender reads the source, runs the pipeline, and writes artifacts.
func (c *CLI) runRender(ctx context.Context, cfg *config.Config, input string, opts pipeline.Options, output string, noCache bool) error {
	data, err := readInput(input)
	if err != nil {
		return fmt.Errorf("read input %s: %w", input, err)
	}
	opts.Input = data

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
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
