package llm

// ChatRequest is the body accepted by the relay's /api/chat endpoint.
// It never carries the persona; the relay injects that itself.
type ChatRequest struct {
	Messages []Message `json:"messages"` // Conversation history, oldest first
}

// CompletionRequest is what the relay hands to a Provider.
type CompletionRequest struct {
	Model    string    // Provider model identifier (e.g., "gpt-3.5-turbo")
	Messages []Message // Persona first, then the client's conversation
}
