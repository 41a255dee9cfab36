package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svglayers/pkg/render/outline"
)

// treeFlags holds the command-line flags for the tree command.
type treeFlags struct {
	format   string
	depth    int
	detailed bool
	output   string
	noCache  bool
}

// treeCommand creates the tree command for printing document structure.
func (c *CLI) treeCommand() *cobra.Command {
	flags := treeFlags{format: outline.FormatText}

	cmd := &cobra.Command{
		Use:   "tree [file.svg]",
		Short: "Print the element structure of an SVG document",
		Long: `Print the element hierarchy of an SVG document.

Formats:
  text  indented tree (default)
  dot   Graphviz digraph
  svg   Graphviz diagram rendered to SVG

Run it before and after "svglayers run" to see what the pipeline changed.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSVG,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", flags.format, "output format: text, dot, svg")
	cmd.Flags().IntVarP(&flags.depth, "depth", "d", 0, "levels below the root to show (0 = all)")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "show transform, style and clip-path")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{outline.FormatText, outline.FormatDOT, outline.FormatSVG}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runTree(cmd *cobra.Command, input string, flags treeFlags) error {
	ctx := cmd.Context()

	if err := outline.ValidateFormat(flags.format); err != nil {
		return err
	}
	if flags.depth < 0 {
		return fmt.Errorf("depth must be non-negative, got %d", flags.depth)
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	data, err := readInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	out, hit, err := runner.Outline(ctx, data, flags.format, outline.Options{MaxDepth: flags.depth, Detailed: flags.detailed})
	if err != nil {
		return fmt.Errorf("outline %s: %w", input, err)
	}
	loggerFromContext(ctx).Debug("outline", "format", flags.format, "bytes", len(out), "cached", hit)

	if flags.output == "" {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(flags.output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", flags.output, err)
	}
	printSuccess("Outline written")
	printFile(flags.output)
	return nil
}
