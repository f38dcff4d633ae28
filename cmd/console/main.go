package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"user_service/config"
	"user_service/internal/console"
	"user_service/internal/storage"
	"user_service/internal/usecase"
)

func main() {
	// Logs go to stderr so they do not interleave with the menu.
	logger := config.NewLogger("info", "text")
	logger.SetOutput(os.Stderr)

	cfg, err := config.LoadConfig(logger)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger = config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	logger.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to open storage: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Errorf("%v", err)
		}
	}()

	menu, err := console.NewMenu(os.Stdin, os.Stdout, usecase.NewUserUseCase(store.Users, logger), logger)
	if err != nil {
		logger.Errorf("Failed to start console: %v", err)
		return
	}
	if err := menu.Run(ctx); err != nil && err != context.Canceled {
		logger.Errorf("Console stopped: %v", err)
	}
}
