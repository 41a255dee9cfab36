package cli

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/svglayers/pkg/pipeline"
	"github.com/matzehuels/svglayers/pkg/render/outline"
	"github.com/matzehuels/svglayers/pkg/svg"
)

// inspectCommand creates the inspect command: run the pipeline in memory
// and browse the resulting layers.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags       runFlags
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [file.svg]",
		Short: "Run the pipeline and browse the resulting layers",
		Long: `Run the pipeline without writing output and list every top-level layer with
its element count and style groups. In a terminal an interactive browser is
opened; use --plain for a static table.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSVG,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd, args[0], flags, interactive)
		},
	}

	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.noRegroup, "no-regroup", false, "skip regrouping by style")
	cmd.Flags().BoolVar(&interactive, "tui", isTerminal(os.Stdout), "open the interactive browser")

	return cmd
}

func (c *CLI) runInspect(cmd *cobra.Command, input string, flags runFlags, interactive bool) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts := pipelineOptions(cmd, pipeline.FromConfig(cfg), flags)
	opts.Logger = loggerFromContext(ctx)

	data, err := readInput(input)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, os.Stderr, "Processing "+filepath.Base(input)+"...")
	spinner.Start()
	res, err := runner.Execute(ctx, data, opts)
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("process %s: %w", input, err)
	}

	// Cached results carry only the serialized output.
	doc := res.Document
	if doc == nil {
		if doc, err = svg.Parse(res.Output); err != nil {
			return fmt.Errorf("reparse cached result: %w", err)
		}
	}
	layers := outline.Layers(doc)

	if !interactive {
		printLayers(cmd.OutOrStdout(), layers)
		return nil
	}

	m := NewLayerListModel(filepath.Base(input), layers)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return err
	}
	return nil
}

// isTerminal reports whether f is a character device.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
