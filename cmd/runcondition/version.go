package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/runcondition"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of runcondition",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "runcondition version %s\n", strings.TrimSpace(runcondition.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
