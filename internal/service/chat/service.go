package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/newsbot/gateway/internal/model/chat"
)

// ErrMissingFields rejects requests without a session id or message
// before any subprocess or store work happens.
var ErrMissingFields = errors.New("sessionId and message are required")

// Store is the session history the service writes successful turns to.
type Store interface {
	AppendTurn(ctx context.Context, sessionID string, turn chat.Turn) error
	History(ctx context.Context, sessionID string) ([]chat.Turn, error)
	Clear(ctx context.Context, sessionID string) error
}

// Executor produces an answer for a single query or fails.
type Executor interface {
	Execute(ctx context.Context, query string) (string, error)
}

// Service orchestrates one query end-to-end: validate, execute, persist
// the turn, return the answer.
type Service struct {
	store Store
	exec  Executor
}

// NewService wires the orchestrator to its collaborators.
func NewService(store Store, exec Executor) *Service {
	return &Service{store: store, exec: exec}
}

// Chat runs one user message through the answer-generation process and,
// on success, appends the resulting turn to the session history. A
// failed execution is never persisted; history only ever contains
// successful exchanges. At most one store write happens per call.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (string, error) {
	query := strings.TrimSpace(message)
	if sessionID == "" || query == "" {
		return "", ErrMissingFields
	}

	answer, err := s.exec.Execute(ctx, query)
	if err != nil {
		return "", err
	}

	turn := chat.Turn{User: message, Bot: answer}
	if err := s.store.AppendTurn(ctx, sessionID, turn); err != nil {
		return "", err
	}

	return answer, nil
}

// History returns the session's stored turns in insertion order; an
// unknown or expired session yields an empty history.
func (s *Service) History(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	return s.store.History(ctx, sessionID)
}

// ClearHistory deletes the session unconditionally. Idempotent.
func (s *Service) ClearHistory(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}
