package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/atidraw"
	"github.com/aretw0/atidraw/internal/cli"
	"github.com/aretw0/atidraw/internal/config"
	"github.com/aretw0/atidraw/pkg/adapters/mcp"
)

func newMCPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Starts the tool server as an MCP Server. Every tool is published through tools/list
and runs through tools/call; the result text is the JSON envelope.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
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

			srv, err := mcp.NewServer(rt.Server, a.cfg.Server.Name, atidraw.Version, mcp.WithLogger(a.logger))
			if err != nil {
				return err
			}

			switch a.cfg.MCP.Transport {
			case config.TransportStdio:
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				a.logger.Info("starting MCP server (stdio)")
				return srv.ServeStdio()
			case config.TransportSSE:
				a.logger.Info("starting MCP server (SSE)", "port", a.cfg.MCP.Port)
				if err := srv.ServeSSE(ctx, a.cfg.MCP.Port); err != nil {
					return err
				}
				a.logger.Info("MCP server stopped gracefully")
				return nil
			}
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", a.cfg.MCP.Transport)
		},
	}

	cmd.Flags().String("transport", config.TransportStdio, "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
	mustBind(a.v, "mcp.transport", cmd.Flags().Lookup("transport"))
	mustBind(a.v, "mcp.port", cmd.Flags().Lookup("port"))
	return cmd
}
