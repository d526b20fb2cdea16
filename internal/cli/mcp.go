package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/grounded/pkg/adapters/mcp"
)

// MCPOptions configures the MCP server.
type MCPOptions struct {
	Transport string
	Addr      string
}

// ServeMCP exposes the pipeline as an MCP server over stdio or SSE.
func ServeMCP(ctx context.Context, opts Options, mcpOpts MCPOptions) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	// Logs go to stderr so they never corrupt JSON-RPC on stdout.
	logger := createLogger(cfg)

	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := mcp.NewServer(app.Pipeline, mcp.WithLogger(logger))

	switch mcpOpts.Transport {
	case "stdio", "":
		logger.Info("Starting Grounded MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting Grounded MCP Server (SSE)", "address", mcpOpts.Addr)
		return srv.ServeSSE(ctx, mcpOpts.Addr)
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", mcpOpts.Transport)
	}
}
