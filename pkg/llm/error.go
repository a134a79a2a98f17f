// Package llm provides the internal representations of chat completion requests,
// conversations and provider streams shared by the relay and the terminal.
package llm

// ErrorResponse is the JSON body returned for any failed relay request.
type ErrorResponse struct {
	Error string `json:"error"`
}
