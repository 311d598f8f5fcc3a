package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/atidraw"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of atidraw",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "atidraw version %s\n", atidraw.VersionString())
		},
	}
}
