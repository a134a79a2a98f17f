package llm

// Turn is a completed relay exchange: the messages sent to the provider
// (persona included) and the assistant reply that was streamed back.
type Turn struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Reply    Message   `json:"reply"`
}
