package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/atidraw/internal/cli"
)

func newCallCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Run one tool against the configured store and print its envelope",
		Example: `  atidraw call create_drawing --args '{"title":"Sunset"}'
  atidraw call list_drawings --storage sqlite --args '{"limit":3}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("args")
			toolArgs, err := cli.ParseArguments(raw)
			if err != nil {
				return err
			}

			rt, err := cli.NewRuntime(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			resp := rt.Server.Dispatch(cmd.Context(), args[0], toolArgs)
			if err := cli.WriteEnvelope(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if !resp.Success {
				return errCallFailed
			}
			return nil
		},
	}

	cmd.Flags().String("args", "", "Tool arguments as a JSON object")
	return cmd
}
