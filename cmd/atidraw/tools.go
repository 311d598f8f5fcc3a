package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/atidraw"
	"github.com/aretw0/atidraw/internal/cli"
	"github.com/aretw0/atidraw/internal/presentation/tui"
)

func newToolsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			category, _ := cmd.Flags().GetString("category")
			format, _ := cmd.Flags().GetString("format")

			srv, err := atidraw.New(cmd.Context(), atidraw.WithLogger(a.logger))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var render func(string) (string, error)
			if format == cli.FormatMarkdown && tui.IsTerminal(out) {
				render, err = tui.NewRenderer(tui.Width(out))
				if err != nil {
					return err
				}
			}
			return cli.WriteCatalog(out, srv.ListTools(category), format, render)
		},
	}

	cmd.Flags().String("category", "", "Only list tools of this category (drawing, storage, ai)")
	cmd.Flags().StringP("format", "f", cli.FormatJSON, "Output format: json, yaml or markdown")
	return cmd
}
