package domain

import "fmt"

// Stage is the position of a question in the pipeline state machine.
type Stage string

const (
	StageStart           Stage = "start"
	StageValidated       Stage = "validated"
	StageContextResolved Stage = "context_resolved"
	StageAnswered        Stage = "answered"
	StageTerminated      Stage = "terminated" // Sink state, Answer is always set
)

// Outcome describes which path produced the final answer.
type Outcome string

const (
	OutcomeAnswered      Outcome = "answered"       // Model answered from a context passage
	OutcomeFallback      Outcome = "fallback"       // No topic matched
	OutcomeEmptyQuestion Outcome = "empty_question" // Validation short-circuit
	OutcomeModelError    Outcome = "model_error"    // Model failure absorbed
)

// transitions lists the legal moves of the state machine.
var transitions = map[Stage][]Stage{
	StageStart:           {StageValidated, StageTerminated},
	StageValidated:       {StageContextResolved},
	StageContextResolved: {StageAnswered},
	StageAnswered:        {StageTerminated},
}

// QAState is the record passed by reference through the pipeline.
// One instance exists per question and it is never shared between questions.
type QAState struct {
	// Question is the trimmed question text. Case is preserved for prompting.
	Question string `json:"question"`

	// Normalized is the lower-cased question used for trigger matching.
	Normalized string `json:"-"`

	// Context is the passage attached by the resolver, or nil when no topic matched.
	Context *string `json:"context"`

	// Topic names the topic whose passage was attached.
	Topic string `json:"topic,omitempty"`

	// Answer is the final answer. It is never empty once the pipeline returns.
	Answer string `json:"answer"`

	Stage   Stage   `json:"stage"`
	Outcome Outcome `json:"outcome,omitempty"`
}

// NewQAState creates a clean state at the start of the pipeline.
func NewQAState() *QAState {
	return &QAState{Stage: StageStart}
}

// HasContext reports whether a context passage was attached.
func (s *QAState) HasContext() bool {
	return s.Context != nil
}

// ContextText returns the attached passage or an empty string.
func (s *QAState) ContextText() string {
	if s.Context == nil {
		return ""
	}
	return *s.Context
}

// Advance moves the state to the next stage.
// It returns ErrInvalidTransition if the move is not part of the state machine.
func (s *QAState) Advance(to Stage) error {
	for _, allowed := range transitions[s.Stage] {
		if allowed == to {
			s.Stage = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Stage, to)
}

// Terminated reports whether the state reached the sink stage.
func (s *QAState) Terminated() bool {
	return s.Stage == StageTerminated
}
