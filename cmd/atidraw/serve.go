package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/atidraw"
	"github.com/aretw0/atidraw/internal/cli"
	"github.com/aretw0/atidraw/internal/presentation/tui"
	httpAdapter "github.com/aretw0/atidraw/pkg/adapters/http"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Starts the tool server over HTTP:

  GET  /api/mcp/tools     tool discovery (?category=drawing|storage|ai)
  POST /api/mcp/execute   run one tool
  POST /api/mcp/batch     run several tools
  GET  /health, /info, /openapi.yaml, /metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := cli.NotifyContext(cmd.Context())
			defer stop()

			rt, err := cli.NewRuntime(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := rt.Close(); err != nil {
					a.logger.Warn("failed to close store", "error", err)
				}
			}()

			handler := httpAdapter.NewHandler(rt.Server,
				httpAdapter.WithServerName(a.cfg.Server.Name),
				httpAdapter.WithVersion(atidraw.VersionString()),
				httpAdapter.WithMetricsHandler(rt.MetricsHandler()),
				httpAdapter.WithMaxBatch(a.cfg.HTTP.MaxBatch),
				httpAdapter.WithLogger(a.logger),
			)

			ln, err := net.Listen("tcp", a.cfg.HTTP.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", a.cfg.HTTP.Addr, err)
			}

			if tui.IsTerminal(os.Stderr) {
				tui.PrintBanner(os.Stderr, atidraw.Version)
			}

			srv := &http.Server{
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}
			err = cli.Serve(ctx, srv, ln, a.logger)
			if sig := cli.ReceivedSignal(ctx); sig != nil {
				a.logger.Info("stopped", "signal", sig.String())
			}
			return err
		},
	}

	cmd.Flags().String("addr", ":8080", "Address to listen on")
	mustBind(a.v, "http.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
