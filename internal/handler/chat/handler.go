package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/newsbot/gateway/internal/executor"
	"github.com/newsbot/gateway/internal/model/chat"
	chatService "github.com/newsbot/gateway/internal/service/chat"
	"github.com/newsbot/gateway/pkg/utils"
)

// Handler exposes the conversation endpoints.
type Handler struct {
	chatSvc *chatService.Service
	logger  *zap.Logger
}

// New creates the chat handler.
func New(chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	return &Handler{chatSvc: chatSvc, logger: logger}
}

// RegisterRoutes registers the conversation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/history/{sessionID}", h.handleHistory)
	r.Delete("/history/{sessionID}", h.handleClear)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.chatSvc.Chat(r.Context(), payload.SessionID, payload.Message)
	if err != nil {
		h.respondChatError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// respondChatError maps orchestration failures onto the HTTP surface:
// validation is a client fault, everything else a server fault with the
// failure detail included.
func (h *Handler) respondChatError(w http.ResponseWriter, err error) {
	if errors.Is(err, chatService.ErrMissingFields) {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var execErr *executor.ExecutionError
	if errors.As(err, &execErr) {
		h.logger.Error("query process failed",
			zap.Int("exitCode", execErr.ExitCode),
			zap.String("stderr", execErr.Stderr))
		utils.RespondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to process query",
			"details": execErr.Stderr,
		})
		return
	}

	var rejErr *executor.RejectedError
	if errors.As(err, &rejErr) {
		h.logger.Error("query process returned error output", zap.String("output", rejErr.Output))
		utils.RespondError(w, http.StatusInternalServerError, rejErr.Output)
		return
	}

	h.logger.Error("chat request failed", zap.Error(err))
	utils.RespondJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Something went wrong",
		"details": err.Error(),
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	history, err := h.chatSvc.History(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("history fetch failed", zap.String("session", sessionID), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch history")
		return
	}

	if history == nil {
		history = []chat.Turn{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string][]chat.Turn{"history": history})
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.chatSvc.ClearHistory(r.Context(), sessionID); err != nil {
		h.logger.Error("session clear failed", zap.String("session", sessionID), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "Failed to clear session")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Session cleared"})
}
