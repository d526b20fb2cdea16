package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/grounded"
	"github.com/aretw0/grounded/pkg/domain"
	"github.com/aretw0/grounded/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// TopicsURI is the resource listing the active topics.
const TopicsURI = "grounded://topics"

// Pipeline defines what the MCP server needs from grounded.Pipeline.
type Pipeline interface {
	Ask(ctx context.Context, question string) *domain.QAState
	Topics() []domain.Topic
}

// AskArgs are the arguments of the ask tool.
type AskArgs struct {
	Question string `json:"question"`
}

// TopicList is the structured output of the list_topics tool.
type TopicList struct {
	Topics []domain.Topic `json:"topics" jsonschema_description:"Active topics in resolution order"`
}

// Server exposes a grounded pipeline as an MCP Server.
type Server struct {
	pipeline  Pipeline
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(p Pipeline, opts ...Option) *Server {
	s := &Server{
		pipeline:  p,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		mcpServer: server.NewMCPServer("grounded-mcp", strings.TrimSpace(grounded.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	askTool := mcp.NewTool("ask",
		mcp.WithDescription("Answer a question. Questions about a known topic are answered from its passage; others get a fixed fallback message."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The natural-language question")),
		mcp.WithOutputSchema[domain.QAState](),
	)
	s.mcpServer.AddTool(askTool, mcp.NewStructuredToolHandler(s.handleAsk))

	topicsTool := mcp.NewTool("list_topics",
		mcp.WithDescription("List the topics the server can answer from, with their trigger phrases."),
		mcp.WithOutputSchema[TopicList](),
	)
	s.mcpServer.AddTool(topicsTool, mcp.NewStructuredToolHandler(s.handleListTopics))
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest, args AskArgs) (domain.QAState, error) {
	clean, err := runner.SanitizeInput(args.Question)
	if err != nil {
		s.logger.Warn("MCP Ask: input rejected", "err", err, "size", len(args.Question))
		return domain.QAState{}, fmt.Errorf("input rejected: %w", err)
	}
	return *s.pipeline.Ask(ctx, clean), nil
}

func (s *Server) handleListTopics(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (TopicList, error) {
	return TopicList{Topics: s.pipeline.Topics()}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(TopicsURI, "Active Topics",
		mcp.WithResourceDescription("Topics and passages used to ground answers"),
		mcp.WithMIMEType("application/json"),
	), s.handleTopicsResource)
}

func (s *Server) handleTopicsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.pipeline.Topics())
	if err != nil {
		return nil, fmt.Errorf("failed to encode topics: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      TopicsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
