package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/newsbot/gateway/internal/handler/chat"
	middlewarePkg "github.com/newsbot/gateway/internal/middleware"
	chatService "github.com/newsbot/gateway/internal/service/chat"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chat.New(chatSvc, logger)
	chatHandler.RegisterRoutes(r)

	return r
}
