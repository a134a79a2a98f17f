// Package completion adapts OpenAI-compatible chat completion APIs to llm.Provider.
package completion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/papercomputeco/entropy/pkg/config"
	"github.com/papercomputeco/entropy/pkg/llm"
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("provider API key not configured")

// OpenAIProvider streams chat completions from an OpenAI-compatible API.
// It is safe for concurrent use.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider builds a provider from the provider section of the config.
func NewOpenAIProvider(cfg config.ProviderConfig) (*OpenAIProvider, error) {
	return newOpenAIProvider(cfg, cfg.Timeout())
}

func newOpenAIProvider(cfg config.ProviderConfig, headerTimeout time.Duration) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	// Only the wait for response headers is bounded. A long reply keeps
	// streaming until it finishes or the request context is cancelled.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = headerTimeout
	clientCfg.HTTPClient = &http.Client{Transport: transport}

	return &OpenAIProvider{client: openai.NewClientWithConfig(clientCfg)}, nil
}

// Stream starts a streaming completion for req.
func (p *OpenAIProvider) Stream(ctx context.Context, req llm.CompletionRequest) (llm.Stream, error) {
	msgs := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: msgs,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("create completion stream: %w", err)
	}

	return &openAIStream{stream: stream}, nil
}

type openAIStream struct {
	stream *openai.ChatCompletionStream
}

func (s *openAIStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("receive completion chunk: %w", err)
		}

		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (s *openAIStream) Close() error {
	return s.stream.Close()
}

// Message extracts the provider's own error message from err, if it carries one.
func Message(err error) (string, bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}
