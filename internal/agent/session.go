package agent

import (
	"context"
	"sync"

	"gripulse/internal/llm"
	"gripulse/pkg/contracts/domain"
)

// Session is one conversational chat with history. Safe for concurrent
// use; WebSocket reads and HTTP posts may share a session.
type Session struct {
	mu      sync.Mutex
	llm     llm.Completer
	history []domain.ChatMessage
}

// NewSession creates an empty chat session.
func NewSession(completer llm.Completer) *Session {
	return &Session{llm: completer}
}

// Ask appends the user turn, queries the model with the full history
// behind the expert system prompt, and records the reply.
func (s *Session) Ask(ctx context.Context, input string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, domain.ChatMessage{Role: domain.RoleUser, Content: input})

	messages := make([]domain.ChatMessage, 0, len(s.history)+1)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: expertSystemPrompt})
	messages = append(messages, s.history...)

	reply, err := s.llm.Complete(ctx, messages)
	if err != nil {
		// drop the unanswered turn so a retry does not duplicate it
		s.history = s.history[:len(s.history)-1]
		return "", err
	}

	s.history = append(s.history, domain.ChatMessage{Role: domain.RoleAssistant, Content: reply})
	return reply, nil
}

// History returns a copy of the conversation so far.
func (s *Session) History() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// Reset clears the conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}
