package main

import (
	"github.com/aretw0/grounded/internal/cli"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the pipeline and topic routing as a Mermaid flowchart",
	Long: `Prints the stages of the pipeline and the configured topics as Mermaid syntax.
With --question, the path that question takes is highlighted. The model is never called.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		question, _ := cmd.Flags().GetString("question")
		return cli.Graph(cmd.Context(), globalOptions(cmd), question, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().StringP("question", "q", "", "Highlight the path of this question")
}
