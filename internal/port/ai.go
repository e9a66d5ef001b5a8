package port

import "context"

// AIProvider abstracts the hosted generative model behind the AI flows.
// Implementations can target Ollama, Gemini, or any compatible API.
type AIProvider interface {
	// ModelName returns the identifier of the model being used.
	ModelName() string

	// Chat sends a prompt with optional context chunks and returns the model response.
	Chat(ctx context.Context, systemPrompt string, userPrompt string, contextChunks []string) (string, error)
}
