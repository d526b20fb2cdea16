package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStageEnter  EventType = "stage_enter"
	EventStageLeave  EventType = "stage_leave"
	EventModelCall   EventType = "model_call"
	EventModelReturn EventType = "model_return"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"` // Correlates events of one question
}

// StageEvent represents entry into or exit from a pipeline stage.
type StageEvent struct {
	EventBase
	Stage   Stage   `json:"stage"`
	Topic   string  `json:"topic,omitempty"`
	Outcome Outcome `json:"outcome,omitempty"`
}

// ModelEvent represents a call to the language model collaborator.
type ModelEvent struct {
	EventBase
	Model    string        `json:"model"`
	Prompt   string        `json:"prompt,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Cached   bool          `json:"cached,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for pipeline observability.
type LifecycleHooks struct {
	OnStageEnter  func(context.Context, *StageEvent)
	OnStageLeave  func(context.Context, *StageEvent)
	OnModelCall   func(context.Context, *ModelEvent)
	OnModelReturn func(context.Context, *ModelEvent)
}
