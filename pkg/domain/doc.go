/*
Package domain contains the core domain models of the grounded question pipeline.

It defines the state that flows through the pipeline stages, the topics used to
ground answers, the fixed user-facing messages, and the lifecycle events emitted
while a question is processed. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - QAState: The record carried through validation, context resolution and answer generation.
  - Stage: The position of a QAState in the pipeline state machine.
  - Topic: A named passage plus the trigger phrases that select it.
  - LifecycleHooks: Callbacks for observing stage transitions and model calls.
*/
package domain
