package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/dagflow/internal/server"
	"github.com/matzehuels/dagflow/pkg/pipeline"
)

type serveOpts struct {
	addr      string
	noMetrics bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve workflow views, renders and dependency queries over HTTP.

Named definitions come from the configured source: a directory of JSON
files, a MongoDB collection or another dagflow server. Views and renders are cached in the
configured cache. Prometheus metrics are exposed on /metrics unless
disabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts *serveOpts) error {
	ctx := cmd.Context()
	cfg, err := c.config()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	src, closeSrc, err := c.openSource(ctx)
	if err != nil {
		return err
	}
	defer closeSrc(ctx)

	srvOpts := server.Options{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration,
		Defaults:        cfg.PipelineOptions(),
		Logger:          c.Logger,
	}
	if opts.addr != "" {
		srvOpts.Addr = opts.addr
	}
	if cfg.Server.Metrics && !opts.noMetrics {
		srvOpts.Metrics = server.NewMetrics()
	}
	srvOpts.Defaults.Formats = []string{pipeline.FormatJSON}

	srv, err := server.New(runner, src, srvOpts)
	if err != nil {
		return err
	}
	c.Logger.Info("serving", "addr", srvOpts.Addr, "source", src.Kind(), "metrics", srvOpts.Metrics != nil)
	return srv.ListenAndServe(ctx)
}
