package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/grounded"
	"github.com/aretw0/grounded/pkg/domain"
	"github.com/aretw0/grounded/pkg/ports"
	"github.com/aretw0/grounded/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline defines what the server needs from grounded.Pipeline.
type Pipeline interface {
	Ask(ctx context.Context, question string) *domain.QAState
	Topics() []domain.Topic
	Watch(ctx context.Context) (<-chan string, error)
	Model() ports.Model
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

// Server serves the grounded HTTP API.
type Server struct {
	Pipeline  Pipeline
	Logger    *slog.Logger
	validator *requestValidator
	apiVer    string
}

// Option configures the HTTP handler.
type Option func(*config)

type config struct {
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics exposes the gatherer at GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(c *config) {
		c.gatherer = g
	}
}

// NewHandler creates a new HTTP handler for the pipeline.
func NewHandler(p Pipeline, opts ...Option) (http.Handler, error) {
	cfg := &config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(cfg)
	}

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	validator, err := newRequestValidator(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build request validator: %w", err)
	}

	s := &Server{
		Pipeline:  p,
		Logger:    cfg.logger,
		validator: validator,
		apiVer:    doc.Info.Version,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/ask", s.AskQuery)
	r.With(s.validate).Post("/ask", s.Ask)
	r.Get("/topics", s.ListTopics)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)

	if cfg.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	}
	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) validate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.validator.Validate(r.Context(), r); err != nil {
			s.Logger.Warn("request rejected by schema", "path", r.URL.Path, "err", err)
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Ask handles the POST /ask request.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var body AskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.Logger.Warn("Ask: invalid request body", "err", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.answer(w, r, body.Question)
}

// AskQuery handles the GET /ask?q= request. A missing q is an empty question.
func (s *Server) AskQuery(w http.ResponseWriter, r *http.Request) {
	var q *string
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &q); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter q: %v", err))
		return
	}
	question := ""
	if q != nil {
		question = *q
	}
	s.answer(w, r, question)
}

func (s *Server) answer(w http.ResponseWriter, r *http.Request, question string) {
	clean, err := runner.SanitizeInput(question)
	if err != nil {
		s.Logger.Warn("Ask: input rejected", "err", err, "size", len(question))
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid input: %v", err))
		return
	}

	state := s.Pipeline.Ask(r.Context(), clean)
	writeJSON(w, s.Logger, state)
}

// ListTopics handles the GET /topics request.
func (s *Server) ListTopics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Logger, s.Pipeline.Topics())
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Logger, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Logger, map[string]string{
		"app":         "grounded-http",
		"version":     strings.TrimSpace(grounded.Version),
		"api_version": s.apiVer,
		"model":       s.Pipeline.Model().Name(),
	})
}

// SubscribeEvents handles the GET /events request (SSE).
// Each topic source change is sent as one data event.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	events, err := s.Pipeline.Watch(r.Context())
	if err != nil {
		writeError(w, http.StatusNotImplemented, fmt.Sprintf("Watch error: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE client disconnected")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
