package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/grounded/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "grounded",
	Short: "Grounded answers questions from known topics",
	Long: `Grounded validates a question, matches it against a fixed set of topics and
answers it from the matching passage through a language model. Questions
outside every topic get a fixed fallback message instead of a guess.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// globalOptions reads the persistent flags.
func globalOptions(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	topicsFile, _ := flags.GetString("topics")
	topicsDir, _ := flags.GetString("topics-dir")
	logLevel, _ := flags.GetString("log-level")
	logFormat, _ := flags.GetString("log-format")
	provider, _ := flags.GetString("provider")
	model, _ := flags.GetString("model")

	return cli.Options{
		ConfigPath: configPath,
		TopicsFile: topicsFile,
		TopicsDir:  topicsDir,
		LogLevel:   logLevel,
		LogFormat:  logFormat,
		Provider:   provider,
		Model:      model,
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to a YAML configuration file")
	flags.String("topics", "", "YAML or JSON file with the topic set")
	flags.String("topics-dir", "", "Directory of Markdown topic documents")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: text or json")
	flags.String("provider", "", "Model provider: genai or ollama")
	flags.String("model", "", "Model name for the selected provider")

	rootCmd.MarkFlagsMutuallyExclusive("topics", "topics-dir")
}
