package runtime_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/grounded/internal/runtime"
	"github.com/aretw0/grounded/internal/testutils"
	"github.com/aretw0/grounded/pkg/adapters/memory"
	"github.com/aretw0/grounded/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, model *testutils.StubModel, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	resolver, err := runtime.NewResolver(domain.DefaultTopics())
	require.NoError(t, err)
	return runtime.NewEngine(model, resolver, opts...)
}

func TestEngine_Run_Scenarios(t *testing.T) {
	t.Run("Topic Question Invokes Model", func(t *testing.T) {
		model := testutils.NewStubModel("  LangGraph coordinates LLM actors.\n")
		engine := newEngine(t, model)

		state := engine.Run(context.Background(), "What is LangGraph?")

		require.NotNil(t, state.Context)
		assert.Equal(t, domain.LangGraphPassage, *state.Context)
		assert.Equal(t, "langgraph", state.Topic)
		assert.Equal(t, "LangGraph coordinates LLM actors.", state.Answer)
		assert.Equal(t, domain.OutcomeAnswered, state.Outcome)
		assert.Equal(t, domain.StageTerminated, state.Stage)

		require.Equal(t, 1, model.Calls())
		prompt := model.Prompts()[0]
		assert.Equal(t, domain.ComposePrompt(domain.LangGraphPassage, "What is LangGraph?"), prompt)
		assert.Contains(t, prompt, domain.LangGraphPassage)
		assert.Contains(t, prompt, "What is LangGraph?")
	})

	t.Run("Off Topic Question Falls Back", func(t *testing.T) {
		model := testutils.NewStubModel("unused")
		engine := newEngine(t, model)

		state := engine.Run(context.Background(), "What is the weather today?")

		assert.Nil(t, state.Context)
		assert.Equal(t, domain.FallbackAnswer, state.Answer)
		assert.Equal(t, "I don't have enough context to answer your question.", state.Answer)
		assert.Equal(t, domain.OutcomeFallback, state.Outcome)
		assert.Equal(t, 0, model.Calls())
	})

	t.Run("Empty Question Short Circuits", func(t *testing.T) {
		for _, q := range []string{"", "   ", "\n\t"} {
			model := testutils.NewStubModel("unused")
			engine := newEngine(t, model)

			state := engine.Run(context.Background(), q)

			assert.Equal(t, domain.EmptyQuestionAnswer, state.Answer)
			assert.Equal(t, domain.OutcomeEmptyQuestion, state.Outcome)
			assert.Equal(t, domain.StageTerminated, state.Stage)
			assert.Empty(t, state.Question)
			assert.Nil(t, state.Context)
			assert.Equal(t, 0, model.Calls())
		}
	})

	t.Run("Mixed Case Trigger", func(t *testing.T) {
		model := testutils.NewStubModel("It is a tutorial.")
		engine := newEngine(t, model)

		state := engine.Run(context.Background(), "Tell me about this GUIDED PROJECT")

		require.NotNil(t, state.Context)
		assert.Equal(t, domain.LangGraphPassage, *state.Context)
		assert.Equal(t, "Tell me about this GUIDED PROJECT", state.Question)
		assert.Contains(t, model.Prompts()[0], "Tell me about this GUIDED PROJECT")
	})
}

func TestEngine_Run_Idempotent(t *testing.T) {
	model := testutils.NewStubModel("Deterministic answer.")
	engine := newEngine(t, model)

	for _, q := range []string{"What is LangGraph?", "What is the weather today?", ""} {
		first := engine.Run(context.Background(), q)
		second := engine.Run(context.Background(), q)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("Run(%q) not idempotent (-first +second):\n%s", q, diff)
		}
	}
}

func TestEngine_Run_ModelFailureAbsorbed(t *testing.T) {
	tests := []struct {
		name  string
		model *testutils.StubModel
		opts  []runtime.EngineOption
	}{
		{name: "Error", model: testutils.NewFailingModel()},
		{name: "Blank Response", model: testutils.NewStubModel("   \n")},
		{
			name: "Panic",
			model: &testutils.StubModel{Respond: func(ctx context.Context, prompt string) (string, error) {
				panic("provider exploded")
			}},
		},
		{
			name: "Timeout",
			model: &testutils.StubModel{Respond: func(ctx context.Context, prompt string) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			}},
			opts: []runtime.EngineOption{runtime.WithModelTimeout(10 * time.Millisecond)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newEngine(t, tt.model, tt.opts...)

			var state *domain.QAState
			assert.NotPanics(t, func() {
				state = engine.Run(context.Background(), "What is LangGraph?")
			})

			require.NotNil(t, state)
			assert.Equal(t, domain.ModelErrorAnswer, state.Answer)
			assert.Equal(t, domain.OutcomeModelError, state.Outcome)
			assert.Equal(t, domain.StageTerminated, state.Stage)
			assert.NotNil(t, state.Context, "context stays attached after a model failure")
		})
	}
}

func TestEngine_Hooks(t *testing.T) {
	var mu sync.Mutex
	var entered []domain.Stage
	var modelEvents []*domain.ModelEvent

	hooks := domain.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *domain.StageEvent) {
			mu.Lock()
			defer mu.Unlock()
			entered = append(entered, e.Stage)
		},
		OnModelReturn: func(ctx context.Context, e *domain.ModelEvent) {
			mu.Lock()
			defer mu.Unlock()
			modelEvents = append(modelEvents, e)
		},
	}

	t.Run("Full Path", func(t *testing.T) {
		entered, modelEvents = nil, nil
		engine := newEngine(t, testutils.NewFailingModel(), runtime.WithLifecycleHooks(hooks))

		engine.Run(context.Background(), "What is LangGraph?")

		assert.Equal(t, []domain.Stage{
			domain.StageValidated,
			domain.StageContextResolved,
			domain.StageAnswered,
			domain.StageTerminated,
		}, entered)
		require.Len(t, modelEvents, 1)
		assert.True(t, modelEvents[0].IsError)
		assert.ErrorIs(t, modelEvents[0].Err, domain.ErrModelInvocation)
		assert.ErrorIs(t, modelEvents[0].Err, testutils.ErrStubFailure)
		assert.Equal(t, "stub", modelEvents[0].Model)
		assert.NotEmpty(t, modelEvents[0].RunID)
	})

	t.Run("Short Circuit", func(t *testing.T) {
		entered, modelEvents = nil, nil
		engine := newEngine(t, testutils.NewStubModel("x"), runtime.WithLifecycleHooks(hooks))

		engine.Run(context.Background(), "  ")

		assert.Equal(t, []domain.Stage{domain.StageTerminated}, entered)
		assert.Empty(t, modelEvents)
	})
}

type panickyNameModel struct {
	*testutils.StubModel
}

func (panickyNameModel) Name() string {
	panic("name unavailable")
}

func TestEngine_PanickingCollaborators(t *testing.T) {
	boom := func() { panic("hook exploded") }
	hooks := domain.LifecycleHooks{
		OnStageEnter:  func(context.Context, *domain.StageEvent) { boom() },
		OnStageLeave:  func(context.Context, *domain.StageEvent) { boom() },
		OnModelCall:   func(context.Context, *domain.ModelEvent) { boom() },
		OnModelReturn: func(context.Context, *domain.ModelEvent) { boom() },
	}

	t.Run("Hooks", func(t *testing.T) {
		engine := newEngine(t, testutils.NewStubModel("Graphs of actors."), runtime.WithLifecycleHooks(hooks))

		var state *domain.QAState
		require.NotPanics(t, func() {
			state = engine.Run(context.Background(), "What is LangGraph?")
		})
		assert.Equal(t, "Graphs of actors.", state.Answer)
		assert.Equal(t, domain.OutcomeAnswered, state.Outcome)
		assert.Equal(t, domain.StageTerminated, state.Stage)
	})

	t.Run("Model Name", func(t *testing.T) {
		resolver, err := runtime.NewResolver(domain.DefaultTopics())
		require.NoError(t, err)

		var state *domain.QAState
		require.NotPanics(t, func() {
			engine := runtime.NewEngine(panickyNameModel{testutils.NewStubModel("ok")}, resolver)
			state = engine.Run(context.Background(), "What is LangGraph?")
		})
		assert.Equal(t, "ok", state.Answer)
	})
}

func TestEngine_Cache(t *testing.T) {
	model := testutils.NewStubModel("Cached answer.")
	cache := memory.NewCache()
	engine := newEngine(t, model, runtime.WithCache(cache))

	first := engine.Run(context.Background(), "What is LangGraph?")
	second := engine.Run(context.Background(), "What is LangGraph?")

	assert.Equal(t, 1, model.Calls(), "second question must be served from cache")
	assert.Equal(t, first.Answer, second.Answer)

	t.Run("Failures Are Not Cached", func(t *testing.T) {
		failing := testutils.NewFailingModel()
		cache := memory.NewCache()
		engine := newEngine(t, failing, runtime.WithCache(cache))

		engine.Run(context.Background(), "What is LangGraph?")
		engine.Run(context.Background(), "What is LangGraph?")

		assert.Equal(t, 2, failing.Calls())
	})
}

func TestEngine_SetResolver(t *testing.T) {
	model := testutils.NewStubModel("ok")
	engine := newEngine(t, model)

	state := engine.Run(context.Background(), "How does Redis persist data?")
	assert.Nil(t, state.Context)

	resolver, err := runtime.NewResolver([]domain.Topic{
		{Name: "redis", Triggers: []string{"redis"}, Passage: "Redis supports RDB and AOF."},
	})
	require.NoError(t, err)
	engine.SetResolver(resolver)

	state = engine.Run(context.Background(), "How does Redis persist data?")
	require.NotNil(t, state.Context)
	assert.Equal(t, "Redis supports RDB and AOF.", *state.Context)
	assert.Equal(t, "redis", state.Topic)
}

func TestEngine_ConcurrentRuns(t *testing.T) {
	model := &testutils.StubModel{Respond: func(ctx context.Context, prompt string) (string, error) {
		return prompt, nil
	}}
	engine := newEngine(t, model)

	questions := []string{"What is LangGraph?", "Is the guided project hard?", "Weather?", ""}
	results := make([]*domain.QAState, 40)

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = engine.Run(context.Background(), questions[i%len(questions)])
		}(i)
	}
	wg.Wait()

	for i, state := range results {
		q := questions[i%len(questions)]
		assert.Equal(t, domain.StageTerminated, state.Stage)
		assert.NotEmpty(t, state.Answer)
		if state.HasContext() {
			// The echo model proves each run used its own question.
			assert.Contains(t, state.Answer, q)
		}
	}
}
