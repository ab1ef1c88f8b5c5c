package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/psycare/psycare-go/internal/config"
	"github.com/psycare/psycare-go/internal/stubapi"
	"github.com/psycare/psycare-go/pkg/logging"
)

func main() {
	// Load .env if present; real env vars win.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting psycare stub API",
		"env", cfg.Env,
		"port", cfg.StubPort,
	)

	stub := stubapi.New(stubapi.Config{
		JWTSecret: cfg.StubJWTSecret,
		TokenTTL:  cfg.StubTokenTTL,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.StubPort,
		Handler:      stub.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("stub API listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down stub API...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("stub API stopped")
}
