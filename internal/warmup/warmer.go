// Package warmup pre-populates shared answer caches at startup by
// replaying a fixed set of frequent queries through the normal chat
// path under a synthetic session.
package warmup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultQueries are the seed queries replayed at startup.
var DefaultQueries = []string{
	"latest news on india",
	"india economy",
	"modi policies",
}

// ChatService is the orchestration entry point the warmer drives; it is
// the same path real clients take.
type ChatService interface {
	Chat(ctx context.Context, sessionID, message string) (string, error)
	ClearHistory(ctx context.Context, sessionID string) error
}

// Warmer replays seed queries sequentially, best-effort: a failing
// query never aborts the remaining ones or startup itself.
type Warmer struct {
	chat    ChatService
	queries []string
	timeout time.Duration
	logger  *zap.Logger
}

// New builds a warmer over the given chat entry point.
func New(chat ChatService, queries []string, timeout time.Duration, logger *zap.Logger) *Warmer {
	return &Warmer{chat: chat, queries: queries, timeout: timeout, logger: logger}
}

// Run executes the warming pass. Queries run one at a time so the
// answer-generation process is not flooded at startup and cache
// population order stays deterministic. The synthetic session is
// deleted once every query has been attempted, whatever the outcomes;
// a failed deletion is logged, never escalated.
func (w *Warmer) Run(ctx context.Context) {
	sessionID := warmupSessionID()
	w.logger.Info("starting cache warming", zap.String("session", sessionID))

	for _, query := range w.queries {
		queryCtx, cancel := context.WithTimeout(ctx, w.timeout)
		_, err := w.chat.Chat(queryCtx, sessionID, query)
		cancel()

		if err != nil {
			w.logger.Warn("cache warm failed", zap.String("query", query), zap.Error(err))
			continue
		}
		w.logger.Info("cache warmed", zap.String("query", query))
	}

	if err := w.chat.ClearHistory(ctx, sessionID); err != nil {
		w.logger.Warn("failed to clear warmup session", zap.String("session", sessionID), zap.Error(err))
		return
	}
	w.logger.Info("warmup session cleared", zap.String("session", sessionID))
}

// warmupSessionID derives a session id from the current time so it
// cannot collide with a client-chosen id for this run; the uuid
// fragment guards against two processes starting in the same
// millisecond.
func warmupSessionID() string {
	return fmt.Sprintf("warmup-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
