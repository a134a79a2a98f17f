package llm

import "errors"

// Banner is the seed system message of every terminal conversation.
const Banner = "ENTROPY_AI v1.0.0"

// WelcomeMessage is the seed assistant message of every terminal conversation.
const WelcomeMessage = "Welcome to Entropy AI Terminal!\nType !help for a list of available commands."

var (
	// ErrReplyOpen is returned when a message is appended while a streamed reply is unsealed.
	ErrReplyOpen = errors.New("assistant reply still streaming")

	// ErrNoReply is returned when a delta or seal arrives without an open reply.
	ErrNoReply = errors.New("no assistant reply in progress")
)

// Conversation is an append-only message sequence owned by one client session.
// The last assistant message may be open while it streams; once sealed it is
// immutable like every other message.
type Conversation struct {
	messages  []Message
	replyOpen bool
}

// NewConversation returns a conversation seeded with the banner and welcome messages.
func NewConversation() *Conversation {
	return &Conversation{
		messages: []Message{
			{Role: RoleSystem, Content: Banner},
			AssistantMessage(WelcomeMessage),
		},
	}
}

// Append adds a complete message.
func (c *Conversation) Append(m Message) error {
	if c.replyOpen {
		return ErrReplyOpen
	}
	c.messages = append(c.messages, m)
	return nil
}

// BeginReply opens an empty assistant message that grows through AppendDelta.
func (c *Conversation) BeginReply() error {
	if c.replyOpen {
		return ErrReplyOpen
	}
	c.messages = append(c.messages, AssistantMessage(""))
	c.replyOpen = true
	return nil
}

// AppendDelta extends the open assistant reply.
func (c *Conversation) AppendDelta(delta string) error {
	if !c.replyOpen {
		return ErrNoReply
	}
	c.messages[len(c.messages)-1].Content += delta
	return nil
}

// Seal closes the open reply. An empty reply is dropped.
func (c *Conversation) Seal() error {
	if !c.replyOpen {
		return ErrNoReply
	}
	c.replyOpen = false
	if last := c.messages[len(c.messages)-1]; last.Content == "" {
		c.messages = c.messages[:len(c.messages)-1]
	}
	return nil
}

// Streaming reports whether a reply is open.
func (c *Conversation) Streaming() bool {
	return c.replyOpen
}

// Messages returns a copy of every message, seeds included.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Turns returns the non-system messages in order. This is what a client
// sends to the relay, which supplies its own system persona.
func (c *Conversation) Turns() []Message {
	out := make([]Message, 0, len(c.messages))
	for _, m := range c.messages {
		if m.Role == RoleSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}
