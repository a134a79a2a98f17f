package terminal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/entropy/pkg/commands"
	"github.com/papercomputeco/entropy/pkg/llm"
)

// ErrBusy is returned by Submit while a reply is still streaming.
var ErrBusy = errors.New("a reply is still streaming")

// Chatter sends a conversation to the completion relay.
type Chatter interface {
	Chat(ctx context.Context, msgs []llm.Message) (llm.Stream, error)
}

// Session is one terminal conversation. Commands are answered locally by
// the router; any other line is sent to the relay with the full history.
// A Session is not safe for concurrent use; the bubbletea update loop owns it.
type Session struct {
	conv    *llm.Conversation
	state   commands.State
	router  *commands.Router
	relay   Chatter
	lastErr error
	logger  *zap.Logger
}

// NewSession creates a session seeded with the banner and welcome messages.
func NewSession(router *commands.Router, relay Chatter, logger *zap.Logger) *Session {
	return &Session{
		conv:   llm.NewConversation(),
		router: router,
		relay:  relay,
		logger: logger,
	}
}

// Submit handles one input line. For a command the reply is appended at
// once and the returned stream is nil. Otherwise the line is sent to the
// relay and the caller must pump the returned stream through AppendDelta
// and then call Finish.
//
// A relay failure leaves the user message in place and is reported through
// the returned error and Err; no assistant message is added.
func (s *Session) Submit(ctx context.Context, line string) (llm.Stream, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	if s.conv.Streaming() {
		return nil, ErrBusy
	}
	s.lastErr = nil

	result, next := s.router.Dispatch(ctx, line, s.state)
	s.state = next

	if result.Handled {
		if err := s.conv.Append(llm.UserMessage(line)); err != nil {
			return nil, err
		}
		if err := s.conv.Append(llm.AssistantMessage(result.Text)); err != nil {
			return nil, err
		}
		if result.Panel != commands.PanelNone {
			s.logger.Info("panel opened", zap.String("panel", string(result.Panel)))
		}
		return nil, nil
	}

	if err := s.conv.Append(llm.UserMessage(line)); err != nil {
		return nil, err
	}

	stream, err := s.relay.Chat(ctx, s.conv.Turns())
	if err != nil {
		s.lastErr = err
		s.logger.Warn("chat request failed", zap.Error(err))
		return nil, err
	}

	if err := s.conv.BeginReply(); err != nil {
		stream.Close()
		return nil, err
	}
	return stream, nil
}

// AppendDelta extends the reply being streamed.
func (s *Session) AppendDelta(delta string) error {
	return s.conv.AppendDelta(delta)
}

// Finish seals the streamed reply. A non-nil err is the failure that cut the
// stream short; whatever text arrived before it is kept.
func (s *Session) Finish(err error) error {
	if err != nil {
		s.lastErr = err
		s.logger.Warn("reply stream ended early", zap.Error(err))
	}
	return s.conv.Seal()
}

// Messages returns the conversation so far, seeds included.
func (s *Session) Messages() []llm.Message {
	return s.conv.Messages()
}

// Streaming reports whether a reply is being streamed.
func (s *Session) Streaming() bool {
	return s.conv.Streaming()
}

// State returns the command state.
func (s *Session) State() commands.State {
	return s.state
}

// Err returns the last relay failure, cleared by the next Submit.
func (s *Session) Err() error {
	return s.lastErr
}

// ErrorText renders Err for display.
func (s *Session) ErrorText() string {
	if s.lastErr == nil {
		return ""
	}
	var relayErr *RelayError
	if errors.As(s.lastErr, &relayErr) {
		return "Error: " + relayErr.Message
	}
	return fmt.Sprintf("Error: %v", s.lastErr)
}
