package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"gripulse/internal/agent"
	"gripulse/internal/llm"
	"gripulse/pkg/contracts/domain"
)

// AgentService fronts the chat agent: one-shot questions, chat sessions
// keyed by ID, and document-grounded chat.
type AgentService struct {
	agent     *agent.Agent
	documents *agent.DocumentAgent
	llm       llm.Completer
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*agent.Session
}

// NewAgentService creates an agent service.
func NewAgentService(a *agent.Agent, docs *agent.DocumentAgent, completer llm.Completer, logger *slog.Logger) *AgentService {
	return &AgentService{
		agent:     a,
		documents: docs,
		llm:       completer,
		logger:    logger.With(slog.String("service", "agent")),
		sessions:  make(map[string]*agent.Session),
	}
}

// Ask answers a one-shot question.
func (s *AgentService) Ask(ctx context.Context, question string) (*domain.AgentAnswer, error) {
	return s.agent.Ask(ctx, question)
}

// ChatResult carries a session reply together with its session ID so
// clients can continue the conversation.
type ChatResult struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

// Chat continues (or starts) a session conversation. An empty session
// ID starts a fresh session.
func (s *AgentService) Chat(ctx context.Context, sessionID, message string) (*ChatResult, error) {
	session, id := s.session(sessionID)

	answer, err := session.Ask(ctx, message)
	if err != nil {
		return nil, err
	}
	return &ChatResult{SessionID: id, Answer: answer}, nil
}

// ResetChat clears a session's history. Unknown sessions are a no-op.
func (s *AgentService) ResetChat(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		session.Reset()
	}
}

// History returns a session's conversation so far.
func (s *AgentService) History(sessionID string) ([]domain.ChatMessage, error) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.History(), nil
}

// UploadPDF feeds a PDF into the document agent and returns a preview.
func (s *AgentService) UploadPDF(ctx context.Context, name string, data []byte) (string, error) {
	preview, err := s.documents.UploadPDF(name, data)
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "pdf uploaded",
		slog.String("name", name),
		slog.Int("size_bytes", len(data)))
	return preview, nil
}

// UploadWorkbook feeds a workbook into the document agent and returns
// its sheet names.
func (s *AgentService) UploadWorkbook(ctx context.Context, name string, data []byte) ([]string, error) {
	sheets, err := s.documents.UploadWorkbook(name, data)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "workbook uploaded",
		slog.String("name", name),
		slog.Int("sheets", len(sheets)))
	return sheets, nil
}

// AskDocuments answers a question grounded in the uploaded documents.
func (s *AgentService) AskDocuments(ctx context.Context, question string) (string, error) {
	return s.documents.Ask(ctx, question)
}

func (s *AgentService) session(id string) (*agent.Session, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if session, ok := s.sessions[id]; ok {
			return session, id
		}
	}
	if id == "" {
		id = uuid.New().String()
	}
	session := agent.NewSession(s.llm)
	s.sessions[id] = session
	return session, id
}
