// Package terminal implements the interactive Entropy terminal: a session that
// routes commands locally and forwards everything else to the completion
// relay, and the bubbletea model that presents it.
package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/papercomputeco/entropy/pkg/llm"
)

// RelayError is a relay failure reported before any reply text was streamed.
type RelayError struct {
	StatusCode int
	Message    string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to the completion relay over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a relay client for the relay at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// Streaming replies can take a while.
			Timeout: 5 * time.Minute,
		},
	}
}

// Chat posts msgs to the relay and returns the streamed reply.
// The caller must close the returned stream.
func (c *Client) Chat(ctx context.Context, msgs []llm.Message) (llm.Stream, error) {
	body, err := json.Marshal(llm.ChatRequest{Messages: msgs})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeRelayError(resp)
	}

	return &bodyStream{body: resp.Body, buf: make([]byte, 4096)}, nil
}

func decodeRelayError(resp *http.Response) error {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RelayError{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	var errResp llm.ErrorResponse
	if err := json.Unmarshal(respBody, &errResp); err != nil || errResp.Error == "" {
		return &RelayError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}
	return &RelayError{StatusCode: resp.StatusCode, Message: errResp.Error}
}

// bodyStream exposes a plain-text response body as an llm.Stream. Each Recv
// returns whatever the relay has flushed so far. Close may be called while a
// Recv is blocked; closing the body unblocks it.
type bodyStream struct {
	body   io.ReadCloser
	buf    []byte
	closed atomic.Bool
}

func (s *bodyStream) Recv() (string, error) {
	if s.closed.Load() {
		return "", llm.ErrStreamClosed
	}
	for {
		n, err := s.body.Read(s.buf)
		if n > 0 {
			return string(s.buf[:n]), nil
		}
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("reading relay stream: %w", err)
		}
	}
}

func (s *bodyStream) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.body.Close()
}
