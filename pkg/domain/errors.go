package domain

import "errors"

// ErrEmptyQuestion is returned by validation when the question is absent or blank.
var ErrEmptyQuestion = errors.New("empty question")

// ErrModelInvocation wraps any failure of the language model collaborator.
var ErrModelInvocation = errors.New("model invocation failed")

// ErrEmptyResponse is returned when the model answers with only whitespace.
var ErrEmptyResponse = errors.New("model returned an empty response")

// ErrNoTopics is returned when a resolver is built without topics.
var ErrNoTopics = errors.New("no topics configured")

// ErrInvalidTopic is returned when a topic lacks a name, passage or trigger.
var ErrInvalidTopic = errors.New("invalid topic")

// ErrInvalidTransition is returned when a stage move is not allowed.
var ErrInvalidTransition = errors.New("invalid stage transition")

// ErrCacheMiss is returned by answer caches when a key is not present.
var ErrCacheMiss = errors.New("cache miss")
