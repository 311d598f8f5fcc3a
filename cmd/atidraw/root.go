package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/atidraw/internal/cli"
	"github.com/aretw0/atidraw/internal/config"
)

// errCallFailed reports a failed envelope that was already printed.
var errCallFailed = errors.New("tool call failed")

// app carries the configuration loaded by the root command for its subcommands.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "atidraw",
		Short: "atidraw serves drawing tools over HTTP and the Model Context Protocol",
		Long: `atidraw exposes a registry of drawing tools (create, save, get, list and generate drawings)
through a uniform dispatch protocol. Every call returns a {success, message, ...} envelope.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(a.v, path)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cli.NewLogger(cfg.Log)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a YAML config file (default: ./atidraw.yaml or ~/.atidraw/atidraw.yaml)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("storage", config.BackendMemory, "Storage backend: memory, redis or sqlite")
	mustBind(a.v, "log.level", flags.Lookup("log-level"))
	mustBind(a.v, "storage.backend", flags.Lookup("storage"))

	rootCmd.AddCommand(
		newServeCmd(a),
		newMCPCmd(a),
		newToolsCmd(a),
		newCallCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute(args []string) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errCallFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}
	return 0
}
