package http

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/grounded"
	"github.com/aretw0/grounded/internal/testutils"
	"github.com/aretw0/grounded/pkg/domain"
	"github.com/aretw0/grounded/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...Option) (http.Handler, *testutils.StubModel) {
	t.Helper()
	model := testutils.NewStubModel("LangGraph models agents as graphs.")
	p, err := grounded.New(model)
	require.NoError(t, err)

	h, err := NewHandler(p, opts...)
	require.NoError(t, err)
	return h, model
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) domain.QAState {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var state domain.QAState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}

func TestGetSwagger(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/ask"))
}

func TestAsk_Post(t *testing.T) {
	h, model := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question": "What is LangGraph?"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	state := decodeState(t, w)
	assert.Equal(t, "LangGraph models agents as graphs.", state.Answer)
	assert.Equal(t, domain.OutcomeAnswered, state.Outcome)
	assert.Equal(t, domain.StageTerminated, state.Stage)
	require.NotNil(t, state.Context)
	assert.Equal(t, domain.LangGraphPassage, *state.Context)
	assert.Equal(t, 1, model.Calls())
}

func TestAsk_PostFallback(t *testing.T) {
	h, model := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question": "What is the weather today?"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	state := decodeState(t, w)
	assert.Equal(t, domain.FallbackAnswer, state.Answer)
	assert.Nil(t, state.Context)
	assert.Zero(t, model.Calls())
}

func TestAsk_PostRejectedBySchema(t *testing.T) {
	h, model := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"Wrong Type", `{"question": 42}`},
		{"Unknown Field", `{"question": "hi", "extra": true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Zero(t, model.Calls())
}

func TestAsk_PostMissingQuestion(t *testing.T) {
	h, model := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.Equal(t, domain.EmptyQuestionAnswer, state.Answer)
	assert.Equal(t, domain.OutcomeEmptyQuestion, state.Outcome)
	assert.Zero(t, model.Calls())
}

func TestAsk_Query(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/ask?q=Tell+me+about+the+guided+project", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	state := decodeState(t, w)
	assert.Equal(t, "Tell me about the guided project", state.Question)
	assert.Equal(t, "langgraph", state.Topic)
}

func TestAsk_QueryMissingIsEmptyQuestion(t *testing.T) {
	h, model := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/ask", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	state := decodeState(t, w)
	assert.Equal(t, domain.EmptyQuestionAnswer, state.Answer)
	assert.Equal(t, domain.OutcomeEmptyQuestion, state.Outcome)
	assert.Zero(t, model.Calls())
}

func TestAsk_InvalidInput(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/ask?q=%FF%FE", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTopics(t *testing.T) {
	h, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/topics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var topics []domain.Topic
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &topics))
	require.Len(t, topics, 1)
	assert.Equal(t, "langgraph", topics[0].Name)
}

func TestHealthAndInfo(t *testing.T) {
	h, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "grounded-http", info["app"])
	assert.Equal(t, "stub", info["model"])
	assert.Equal(t, "1.0.0", info["api_version"])
}

func TestOpenAPIDocument(t *testing.T) {
	h, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	p, err := grounded.New(testutils.NewStubModel("x"), grounded.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, err)
	h, err := NewHandler(p, WithMetrics(reg))
	require.NoError(t, err)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ask?q=hello", nil))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `grounded_questions_total{outcome="fallback"} 1`)
}

func TestMetricsEndpoint_DisabledByDefault(t *testing.T) {
	h, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// watchPipeline wraps a real pipeline with a scripted Watch.
type watchPipeline struct {
	*grounded.Pipeline
	watch func(ctx context.Context) (<-chan string, error)
}

func (p *watchPipeline) Watch(ctx context.Context) (<-chan string, error) {
	return p.watch(ctx)
}

func TestSubscribeEvents(t *testing.T) {
	base, err := grounded.New(testutils.NewStubModel("x"))
	require.NoError(t, err)

	p := &watchPipeline{
		Pipeline: base,
		watch: func(ctx context.Context) (<-chan string, error) {
			ch := make(chan string, 1)
			ch <- "reload"
			close(ch)
			return ch, nil
		},
	}
	h, err := NewHandler(p)
	require.NoError(t, err)

	server := httptest.NewServer(h)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var lines []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	assert.Equal(t, []string{"event: ping", "data: connected", "data: reload"}, lines)
}

func TestSubscribeEvents_NotWatchable(t *testing.T) {
	base, err := grounded.New(testutils.NewStubModel("x"))
	require.NoError(t, err)

	p := &watchPipeline{
		Pipeline: base,
		watch: func(ctx context.Context) (<-chan string, error) {
			return nil, errors.New("not watchable")
		},
	}
	h, err := NewHandler(p)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
