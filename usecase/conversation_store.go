package usecase

import (
	"sync"

	"github.com/viralforge/server/domain"
)

// ConversationStore keeps conversation transcripts in memory. Transcripts
// vanish on restart, matching the voice registry.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]*domain.Conversation
}

// NewConversationStore creates an empty store
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[string]*domain.Conversation),
	}
}

// GetOrCreate returns the id of an existing conversation, or of a fresh one
// when id is empty or unknown.
func (s *ConversationStore) GetOrCreate(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" {
		if _, ok := s.conversations[id]; ok {
			return id
		}
	}
	conv := domain.NewConversation()
	s.conversations[conv.ID] = conv
	return conv.ID
}

// Append adds a completed message to a conversation.
func (s *ConversationStore) Append(id string, role domain.MessageRole, text string, sources []string) (domain.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return domain.Message{}, false
	}
	return conv.Append(role, text, sources), true
}

// AppendPending adds a placeholder assistant message to a conversation.
func (s *ConversationStore) AppendPending(id string) (domain.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return domain.Message{}, false
	}
	return conv.AppendPending(), true
}

// Complete fills in the pending assistant tail of a conversation.
func (s *ConversationStore) Complete(id string, text string, sources []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return false
	}
	return conv.Complete(text, sources)
}

// Snapshot returns a copy of one conversation.
func (s *ConversationStore) Snapshot(id string) (domain.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return domain.Conversation{}, false
	}
	copied := domain.Conversation{
		ID:       conv.ID,
		Messages: make([]domain.Message, len(conv.Messages)),
	}
	copy(copied.Messages, conv.Messages)
	return copied, true
}
