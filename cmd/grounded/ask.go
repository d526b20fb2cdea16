package main

import (
	"os"

	"github.com/aretw0/grounded/internal/cli"
	"github.com/aretw0/grounded/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question> [question...]",
	Short: "Answer one or more questions and exit",
	Long: `Answers every question given as an argument. Several questions are answered
concurrently and printed in the order they were given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		return cli.Ask(cmd.Context(), globalOptions(cmd), cli.AskOptions{
			Questions:   args,
			JSON:        jsonMode,
			Render:      !jsonMode && tui.IsTerminal(os.Stdout),
			Concurrency: concurrency,
		}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().Bool("json", false, "Print each final state as a JSON line")
	askCmd.Flags().IntP("concurrency", "j", 4, "Maximum questions answered at once (0 for no limit)")
}
