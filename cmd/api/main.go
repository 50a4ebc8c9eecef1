package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/newsbot/gateway/internal/config"
	"github.com/newsbot/gateway/internal/executor"
	"github.com/newsbot/gateway/internal/handler"
	chatservice "github.com/newsbot/gateway/internal/service/chat"
	"github.com/newsbot/gateway/internal/store"
	"github.com/newsbot/gateway/internal/warmup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	sessionStore := store.New(cfg.Redis)
	defer sessionStore.Close()

	runner := executor.NewRunner(cfg.Query)
	chatSvc := chatservice.NewService(sessionStore, runner)

	// Warm caches in the background once the store is reachable. The
	// server starts serving either way; warming is not a readiness gate.
	if err := sessionStore.Ping(ctx); err != nil {
		logger.Warn("redis unreachable at startup, skipping cache warming", zap.Error(err))
	} else {
		logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		if cfg.Warmup.Enabled {
			warmer := warmup.New(chatSvc, warmup.DefaultQueries, cfg.Warmup.Timeout, logger)
			go warmer.Run(ctx)
		}
	}

	router := handler.NewRouter(chatSvc, logger)

	startServer(ctx, cfg.Server, router, logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("gateway listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
