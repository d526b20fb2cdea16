/*
Package ports defines the driven ports (interfaces) of the grounded pipeline.

These interfaces decouple the pipeline from the language model provider, the
origin of topic definitions and the answer cache backend.

# Key Interfaces

  - Model: The language model collaborator (Gemini, Ollama, or a test stub).
  - TopicSource: Responsible for loading Topic definitions (memory, file, Loam).
  - Watchable: Implemented by topic sources that can signal changes.
  - AnswerCache: Optional memoization of model answers (memory, Redis).
*/
package ports
