/*
Package grounded is a small, deterministic question-answering pipeline that only lets a
language model answer when the question falls within a known topic.

Every question flows through three stages: validation, context resolution and answer
generation. A question that names one of the configured trigger phrases is answered by the
model from that topic's fixed passage; any other question receives a fixed fallback answer
without a model call. The pipeline always returns a state with an answer, even when the
model fails.

# Concept

The pipeline is a linear state machine (start -> validated -> context_resolved -> answered
-> terminated). Stages share a single QAState record per question. The model, the topic
source and the optional answer cache are injected at construction (Hexagonal Architecture),
so the same core serves the CLI, the HTTP server and the MCP server.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"
		"os"

		"github.com/aretw0/grounded"
		"github.com/aretw0/grounded/pkg/adapters/genai"
	)

	func main() {
		ctx := context.Background()

		model, err := genai.New(ctx, genai.Config{APIKey: os.Getenv("GOOGLE_API_KEY")})
		if err != nil {
			log.Fatal(err)
		}

		// Uses the built-in LangGraph topic unless WithTopics/WithTopicSource is given.
		p, err := grounded.New(model)
		if err != nil {
			log.Fatal(err)
		}

		state := p.Ask(ctx, "What is LangGraph?")
		fmt.Println(state.Answer)
	}
*/
package grounded
