package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svglayers/pkg/errors"
	"github.com/matzehuels/svglayers/pkg/observability"
	"github.com/matzehuels/svglayers/pkg/pipeline"
)

// outputSuffix replaces the input extension when -o is not given.
const outputSuffix = ".layers.svg"

// runFlags holds the command-line flags shared by run and ungroup.
// Flags override config file values only when set explicitly.
type runFlags struct {
	output      string   // output path, "-" for stdout
	noPrune     bool     // skip the prune stage
	noUngroup   bool     // skip the ungroup stage
	noRemove    bool     // skip the remove stage
	noRegroup   bool     // skip the regroup stage
	startDepth  int      // first depth at which groups are flattened
	maxDepth    int      // last depth at which groups are flattened
	keepDepth   int      // minimum container height to flatten
	keepViewBox bool     // keep the root viewBox
	removeKinds []string // element names deleted by the remove stage
	prefix      string   // label prefix for regrouped sub-groups
	noCache     bool     // bypass the result cache
	stats       bool     // print the stage table
}

// runCommand creates the run command: the full four-stage pipeline.
func (c *CLI) runCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [file.svg]",
		Short: "Flatten and regroup an SVG document",
		Long: `Run the full pipeline on an SVG document:

  1. prune    remove groups without element children
  2. ungroup  push transform, style and clip-path down and flatten nested groups
  3. remove   delete helper shapes (rect by default)
  4. regroup  split each layer's content into sub-groups by style

The result is written next to the input as NAME.layers.svg unless -o is given.
Use -o - to write to stdout.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSVG,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPipeline(cmd, args[0], flags)
		},
	}

	addPipelineFlags(cmd, &flags)
	cmd.Flags().BoolVar(&flags.noPrune, "no-prune", false, "skip removing empty groups")
	cmd.Flags().BoolVar(&flags.noUngroup, "no-ungroup", false, "skip flattening nested groups")
	cmd.Flags().BoolVar(&flags.noRemove, "no-remove", false, "skip deleting helper shapes")
	cmd.Flags().BoolVar(&flags.noRegroup, "no-regroup", false, "skip regrouping by style")
	cmd.Flags().StringSliceVar(&flags.removeKinds, "remove-kinds", nil, "element names to delete (default rect)")
	cmd.Flags().StringVar(&flags.prefix, "prefix", "", "label prefix for style sub-groups (default Group)")

	return cmd
}

// ungroupCommand creates the ungroup command: only the flatten stage.
func (c *CLI) ungroupCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "ungroup [file.svg]",
		Short: "Flatten nested groups without pruning or regrouping",
		Long: `Push every group's transform, style and clip-path into its children and
dissolve groups below the top-level layers. No other stage runs.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSVG,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.noPrune, flags.noRemove, flags.noRegroup = true, true, true
			return c.runPipeline(cmd, args[0], flags)
		},
	}

	addPipelineFlags(cmd, &flags)
	return cmd
}

func addPipelineFlags(cmd *cobra.Command, flags *runFlags) {
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default NAME.layers.svg, - for stdout)")
	cmd.Flags().IntVar(&flags.startDepth, "start-depth", 0, "first depth at which groups are flattened (default 1)")
	cmd.Flags().IntVar(&flags.maxDepth, "max-depth", 0, "last depth at which groups are flattened (default 65535)")
	cmd.Flags().IntVar(&flags.keepDepth, "keep-depth", 0, "minimum container height a group needs to be flattened")
	cmd.Flags().BoolVar(&flags.keepViewBox, "keep-viewbox", false, "do not fold the root viewBox into the layers")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.stats, "stats", false, "print per-stage timings")
}

// pipelineOptions merges config file values and explicitly set flags.
func pipelineOptions(cmd *cobra.Command, base pipeline.Options, flags runFlags) pipeline.Options {
	opts := base
	set := cmd.Flags().Changed

	opts.SkipPrune = opts.SkipPrune || flags.noPrune
	opts.SkipUngroup = opts.SkipUngroup || flags.noUngroup
	opts.SkipRemove = opts.SkipRemove || flags.noRemove
	opts.SkipRegroup = opts.SkipRegroup || flags.noRegroup
	if set("start-depth") {
		opts.StartDepth = flags.startDepth
	}
	if set("max-depth") {
		opts.MaxDepth = flags.maxDepth
	}
	if set("keep-depth") {
		opts.KeepDepth = flags.keepDepth
	}
	if flags.keepViewBox {
		opts.BakeViewBox = false
	}
	if set("remove-kinds") {
		opts.RemoveKinds = flags.removeKinds
	}
	if set("prefix") {
		opts.GroupPrefix = flags.prefix
	}
	return opts
}

// runPipeline reads input, runs the pipeline and writes the result.
func (c *CLI) runPipeline(cmd *cobra.Command, input string, flags runFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts := pipelineOptions(cmd, pipeline.FromConfig(cfg), flags)
	opts.Logger = logger
	if err := opts.Validate(); err != nil {
		return err
	}

	data, err := readInput(input)
	if err != nil {
		return err
	}
	output := flags.output
	if output == "" {
		output = defaultOutput(input)
	}
	toStdout := output == "-"
	if toStdout {
		statusOut = os.Stderr
		defer func() { statusOut = os.Stdout }()
	}

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, os.Stderr, "Processing "+filepath.Base(input)+"...")
	reporter := newStageReporter(logger, spinner)
	observability.SetPipelineHooks(reporter)
	defer observability.Reset()

	spinner.Start()
	res, err := runner.Execute(ctx, data, opts)
	if err != nil {
		spinner.StopWithError("Processing failed")
		return fmt.Errorf("process %s: %w", input, err)
	}
	spinner.Stop()

	if err := writeOutput(ctx, output, res.Output); err != nil {
		return err
	}

	printSuccess("Processed %s", input)
	if !toStdout {
		printFile(output)
	}
	printRunStats(res)
	if n := len(res.Stats.Ungroup.Failures); n > 0 {
		printWarning("%d node(s) kept a fallback value; run with -v for details", n)
		for _, f := range res.Stats.Ungroup.Failures {
			logger.Debug("fallback", "node", f.NodeID, "op", f.Op, "code", f.Code(), "err", f.Err)
		}
	}
	if flags.stats {
		fmt.Fprintln(statusOut, stageTable(res, reporter.Failures()))
	}
	return nil
}

// readInput validates and reads a document path.
func readInput(path string) ([]byte, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}

// defaultOutput derives NAME.layers.svg from NAME.svg.
func defaultOutput(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + outputSuffix
}

// completeSVG restricts positional completion to SVG files.
func completeSVG(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"svg"}, cobra.ShellCompDirectiveFilterFileExt
}
