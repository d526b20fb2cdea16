package domain

import "fmt"

// Fixed answers returned when the model is not (successfully) consulted.
const (
	FallbackAnswer      = "I don't have enough context to answer your question."
	EmptyQuestionAnswer = "No question provided. Please ask a question."
	ModelErrorAnswer    = "Sorry, I ran into a problem while generating an answer. Please try again later."
)

// PromptTemplate embeds the context passage and the question verbatim.
const PromptTemplate = "Context: %s\nQuestion: %s\nAnswer the question based on the provided context."

// ComposePrompt builds the model prompt for a question and its context passage.
func ComposePrompt(context, question string) string {
	return fmt.Sprintf(PromptTemplate, context, question)
}
