package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jyotish/pkg/api"
	"github.com/matzehuels/jyotish/pkg/observability"
	"github.com/matzehuels/jyotish/pkg/session"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve charts, dashas, transits and calendars over HTTP.

Sessions live in memory unless server.session_dir is configured. Metrics
are exposed at /metrics when server.metrics is enabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			store, err := c.sessionStore()
			if err != nil {
				return err
			}

			var metrics http.Handler
			if c.cfg.Server.Metrics {
				prom := observability.NewPrometheus()
				observability.SetAll(prom)
				defer observability.Reset()
				metrics = prom.Handler()
			}

			srv := api.New(runner, store, c.Logger, api.Options{
				SessionTTL: c.cfg.Server.SessionTTL,
				Metrics:    metrics,
			})
			return srv.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the report cache")
	return cmd
}

func (c *CLI) sessionStore() (session.Store, error) {
	if dir := c.cfg.Server.SessionDir; dir != "" {
		c.Logger.Debug("persisting sessions", "dir", dir)
		return session.NewFileStore(dir)
	}
	return session.NewMemoryStore(), nil
}
