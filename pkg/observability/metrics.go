package observability

import (
	"context"

	"github.com/aretw0/grounded/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the pipeline.
type Metrics struct {
	Questions     *prometheus.CounterVec
	TopicMatches  *prometheus.CounterVec
	ModelCalls    *prometheus.CounterVec
	ModelDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Questions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grounded_questions_total",
				Help: "Total number of questions answered, by outcome",
			},
			[]string{"outcome"},
		),
		TopicMatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grounded_topic_matches_total",
				Help: "Total number of questions grounded by each topic",
			},
			[]string{"topic"},
		),
		ModelCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grounded_model_calls_total",
				Help: "Total number of model answers, by result (ok, error, cached)",
			},
			[]string{"model", "result"},
		),
		ModelDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "grounded_model_call_duration_seconds",
				Help:    "Duration of model calls",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"model"},
		),
	}

	for _, c := range []prometheus.Collector{m.Questions, m.TopicMatches, m.ModelCalls, m.ModelDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *domain.StageEvent) {
			switch e.Stage {
			case domain.StageContextResolved:
				if e.Topic != "" {
					m.TopicMatches.WithLabelValues(e.Topic).Inc()
				}
			case domain.StageTerminated:
				m.Questions.WithLabelValues(string(e.Outcome)).Inc()
			}
		},
		OnModelReturn: func(ctx context.Context, e *domain.ModelEvent) {
			switch {
			case e.Cached:
				m.ModelCalls.WithLabelValues(e.Model, "cached").Inc()
				return
			case e.IsError:
				m.ModelCalls.WithLabelValues(e.Model, "error").Inc()
			default:
				m.ModelCalls.WithLabelValues(e.Model, "ok").Inc()
			}
			m.ModelDuration.WithLabelValues(e.Model).Observe(e.Duration.Seconds())
		},
	}
}
