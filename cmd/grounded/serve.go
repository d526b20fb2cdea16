package main

import (
	"github.com/aretw0/grounded/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the pipeline as a JSON API over HTTP (POST /ask, GET /ask?q=, GET /topics)
with Prometheus metrics at /metrics and the OpenAPI document at /openapi.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		watch, _ := cmd.Flags().GetBool("watch")

		return cli.Serve(cmd.Context(), globalOptions(cmd), cli.ServeOptions{
			Addr:  addr,
			Watch: watch,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (default from config, :8080)")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload topics when the topic directory changes")
}
