package relay

import (
	"errors"

	"github.com/papercomputeco/entropy/pkg/completion"
)

// GenericErrorMessage is reported when a failure carries no message fit for the client.
const GenericErrorMessage = "An error occurred during your request."

// ErrorKind classifies relay failures.
type ErrorKind int

const (
	// KindRequest is a malformed client request.
	KindRequest ErrorKind = iota

	// KindConfiguration is a missing or unusable provider configuration.
	// No provider call is made.
	KindConfiguration

	// KindUpstream is a provider failure before the first streamed byte.
	KindUpstream
)

func (k ErrorKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindConfiguration:
		return "configuration"
	case KindUpstream:
		return "upstream"
	}
	return "unknown"
}

// Error is a failure the relay knows how to describe to its caller.
type Error struct {
	Kind ErrorKind

	// Message is safe to return to the client. Empty means use GenericErrorMessage.
	Message string

	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.String() + " error"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrMissingCredential is returned when no provider API key is configured.
var ErrMissingCredential = &Error{
	Kind:    KindConfiguration,
	Message: "OPENAI_API_KEY is not configured",
}

func upstreamError(err error) *Error {
	msg, _ := completion.Message(err)
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// clientMessage picks the text for the JSON error body.
func clientMessage(err error) string {
	var relayErr *Error
	if errors.As(err, &relayErr) && relayErr.Message != "" {
		return relayErr.Message
	}
	return GenericErrorMessage
}
