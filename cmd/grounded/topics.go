package main

import (
	"github.com/aretw0/grounded/internal/cli"
	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the configured topics in resolution order",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		return cli.ListTopics(cmd.Context(), globalOptions(cmd), jsonMode, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(topicsCmd)

	topicsCmd.Flags().Bool("json", false, "Print topics as JSON")
}
