package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svglayers/internal/api"
	"github.com/matzehuels/svglayers/pkg/observability"
	"github.com/matzehuels/svglayers/pkg/pipeline"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		Long: `Start an HTTP server exposing the pipeline:

  GET  /healthz      liveness probe
  POST /v1/process   body: SVG document, response: rewritten SVG
  POST /v1/tree      body: SVG document, response: structure outline
  GET  /v1/stats     stage, cache and request counters since start

Defaults for /v1/process come from the config file; query parameters
override them per request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			logger := loggerFromContext(ctx)
			counters := observability.NewCounters()
			observability.Register(counters)
			defer observability.Reset()

			srv := api.New(runner, pipeline.FromConfig(cfg), logger, api.WithStats(counters))
			printInfo("Listening on %s", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
