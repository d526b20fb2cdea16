package main

import (
	"github.com/aretw0/grounded/internal/cli"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive question session",
	Long: `Reads questions from standard input, one per line, until EOF or 'exit'.
With --json, every line may be a JSON object {"question": "..."} and every
answer is printed as the final state in JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")
		watch, _ := cmd.Flags().GetBool("watch")

		return cli.RunChat(cmd.Context(), globalOptions(cmd), cli.ChatOptions{
			JSON:    jsonMode,
			Verbose: verbose,
			Watch:   watch,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	chatCmd.Flags().BoolP("verbose", "v", false, "Show the matched topic and outcome after each answer")
	chatCmd.Flags().BoolP("watch", "w", false, "Reload topics when the topic directory changes")

	// 'chat' is the default when no command is provided.
	rootCmd.RunE = chatCmd.RunE
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())
}
