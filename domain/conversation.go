package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageRole identifies the sender of a conversation message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Message is one entry in a conversation transcript.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Text      string      `json:"text"`
	Sources   []string    `json:"sources,omitempty"`
	Pending   bool        `json:"pending,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Conversation is an append-only in-memory transcript. Messages are never
// mutated once appended, except that a pending assistant message may be
// completed exactly once.
type Conversation struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{
		ID:       uuid.NewString(),
		Messages: make([]Message, 0),
	}
}

// Append adds a completed message and returns it.
func (c *Conversation) Append(role MessageRole, text string, sources []string) Message {
	if sources == nil {
		sources = []string{}
	}
	msg := Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Sources:   sources,
		Timestamp: time.Now(),
	}
	c.Messages = append(c.Messages, msg)
	return msg
}

// AppendPending adds a placeholder assistant message awaiting completion.
func (c *Conversation) AppendPending() Message {
	msg := Message{
		ID:        uuid.NewString(),
		Role:      MessageRoleAssistant,
		Pending:   true,
		Sources:   []string{},
		Timestamp: time.Now(),
	}
	c.Messages = append(c.Messages, msg)
	return msg
}

// Complete fills in the final assistant message if it is still pending.
// Completed or non-assistant tails are left untouched.
func (c *Conversation) Complete(text string, sources []string) bool {
	if len(c.Messages) == 0 {
		return false
	}
	last := &c.Messages[len(c.Messages)-1]
	if last.Role != MessageRoleAssistant || !last.Pending {
		return false
	}
	if sources == nil {
		sources = []string{}
	}
	last.Text = text
	last.Sources = sources
	last.Pending = false
	return true
}
