package domain

import (
	"fmt"
	"strings"
)

// Topic maps a set of trigger phrases to a single context passage.
type Topic struct {
	Name     string   `json:"name" yaml:"name" mapstructure:"name"`
	Triggers []string `json:"triggers" yaml:"triggers" mapstructure:"triggers"`
	Passage  string   `json:"passage" yaml:"passage" mapstructure:"passage"`
}

// Validate checks that the topic can take part in resolution.
// A blank trigger would match every question, so it is rejected.
func (t Topic) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidTopic)
	}
	if strings.TrimSpace(t.Passage) == "" {
		return fmt.Errorf("%w: topic %q has no passage", ErrInvalidTopic, t.Name)
	}
	if len(t.Triggers) == 0 {
		return fmt.Errorf("%w: topic %q has no triggers", ErrInvalidTopic, t.Name)
	}
	for _, trigger := range t.Triggers {
		if strings.TrimSpace(trigger) == "" {
			return fmt.Errorf("%w: topic %q has a blank trigger", ErrInvalidTopic, t.Name)
		}
	}
	return nil
}

// LangGraphPassage is the passage of the built-in topic.
const LangGraphPassage = "LangGraph is a library for building stateful, multi-actor applications with LLMs. " +
	"It extends LangChain with the ability to coordinate multiple chains (or actors) across multiple steps of computation. " +
	"This guided project shows a simple question-answering workflow built as a graph of validation, " +
	"context retrieval and answer generation nodes."

// DefaultTopics returns the built-in topic set.
func DefaultTopics() []Topic {
	return []Topic{
		{
			Name:     "langgraph",
			Triggers: []string{"langgraph", "guided project"},
			Passage:  LangGraphPassage,
		},
	}
}
