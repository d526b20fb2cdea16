package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/grounded"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of grounded",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "grounded version %s\n", strings.TrimSpace(grounded.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
