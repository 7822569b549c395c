package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/chatglass/chatglass/pkg/pipeline"
)

// =============================================================================
// Preview Command
// =============================================================================

func (c *CLI) previewCommand() *cobra.Command {
	var (
		legacy bool
		watch  bool
		flags  resolveFlags
	)

	cmd := &cobra.Command{
		Use:   "preview [file|-]",
		Short: "Preview a chat component interactively in the terminal",
		Long: `Preview renders a chat component in an interactive terminal session.

Obfuscated segments animate in place, tooltips follow the mouse over
hoverable text, and clicking a segment triggers its action: links open
in the browser, copy payloads go to the system clipboard, and game-only
actions are flagged as unavailable.

Keys: q quits, r reloads the input, g/G jump to top and bottom.
With --watch the preview reloads automatically when the file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			opts := optionsFromConfig(cfg)
			flags.apply(cmd, &opts)
			opts.Legacy = legacy
			opts.SetResolveDefaults()

			if watch && args[0] == "-" {
				return fmt.Errorf("cannot watch stdin; pass a file path to use --watch")
			}
			return c.runPreview(cmd.Context(), args[0], opts, watch)
		},
	}

	cmd.Flags().BoolVar(&legacy, "legacy", false, "parse input as legacy text with § codes")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the preview when the input file changes")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, input string, opts pipeline.Options, watch bool) error {
	// Batch rendering always disables the scramble interval; the live
	// preview is the one place it drives a real timer.
	ropts := opts.ResolveOptions()
	ropts.Interval = time.Duration(opts.IntervalMS) * time.Millisecond

	model := newPreviewModel(previewParams{
		path:    input,
		legacy:  opts.Legacy,
		resolve: ropts,
		watch:   watch,
	})
	if err := model.load(); err != nil {
		return err
	}

	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	model.repaint.set(p.Send)

	if watch {
		stop, err := watchFile(input, c.Logger, func() {
			p.Send(fileChangedMsg{})
		})
		if err != nil {
			model.release()
			return fmt.Errorf("watching %s: %w", input, err)
		}
		defer stop()
	}

	final, err := p.Run()
	if m, ok := final.(previewModel); ok {
		m.release()
	} else {
		model.release()
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}
