package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"user_service/config"
	"user_service/internal/delivery"
	grpcHandler "user_service/internal/delivery/grpc"
	"user_service/internal/storage"
	"user_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
)

func main() {
	logger := config.NewLogger("info", "json")

	cfg, err := config.LoadConfig(logger)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger = config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("Starting User Service...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
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

	// --- Dependency Injection ---
	userUseCase := usecase.NewUserUseCase(store.Users, logger)
	userHandler, err := delivery.NewUserHandler(userUseCase, delivery.NewLinkBuilder(cfg.PublicBaseURL), logger)
	if err != nil {
		logger.Fatalf("Failed to initialize user handler: %v", err)
	}
	logger.Info("Use cases and handlers initialized.")

	gin.SetMode(gin.ReleaseMode)
	router := delivery.NewRouter(delivery.RouterConfig{AllowedOrigins: cfg.CORSAllowedOrigins}, userHandler, logger)

	httpServer := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: router,
	}
	go func() {
		logger.Infof("HTTP server listening on %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to serve HTTP: %v", err)
		}
		logger.Info("HTTP server stopped serving.")
	}()

	// --- gRPC health ---
	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		logger.Fatalf("Failed to listen on port %s: %v", cfg.GrpcPort, err)
	}
	grpcServer := grpc.NewServer()
	health := grpcHandler.NewHealthHandler(store, cfg.HealthCheckInterval, logger)
	health.Register(grpcServer)
	go health.Run(ctx)

	go func() {
		logger.Infof("gRPC health server listening on %s", cfg.GrpcPort)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Fatalf("Failed to serve gRPC: %v", err)
		}
		logger.Info("gRPC server stopped serving.")
	}()

	<-ctx.Done()
	logger.Warn("Shutdown signal received...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	logger.Info("Attempting graceful shutdown of HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
	}

	logger.Info("Attempting graceful shutdown of gRPC server...")
	grpcServer.GracefulStop()
	logger.Info("User Service shut down gracefully.")
}
