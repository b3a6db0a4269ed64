// Package main initializes and starts the TaskKeeper API server, setting up
// configuration, logging, database connections, repositories, services,
// handlers, and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/TaskKeeper/internal/auth"
	"github.com/atinyakov/TaskKeeper/internal/config"
	"github.com/atinyakov/TaskKeeper/internal/db"
	"github.com/atinyakov/TaskKeeper/internal/logger"
	"github.com/atinyakov/TaskKeeper/internal/repository"
	"github.com/atinyakov/TaskKeeper/internal/server/handler/http"
	"github.com/atinyakov/TaskKeeper/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, config file and environment configuration.
	options, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection; InitPostgres also applies the schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	// Purge soft-deleted tasks in the background.
	db.StartSoftDeleteCleaner(ctx, postgresDB,
		time.Hour,       // interval
		30*24*time.Hour, // retention: 30 days
		zapLogger,
	)

	// Initialize repositories for users and tasks.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	taskRepo := repository.NewPostgresTaskRepository(postgresDB)

	// Initialize business-logic services.
	tokens := auth.NewTokenManager(options.JWTSecret, options.TokenTTL)
	authService := service.NewAuthService(userRepo, tokens)
	taskService := service.NewTaskService(taskRepo)

	// Create HTTP handlers for auth and task endpoints.
	authHandler := &http.AuthHandler{AuthService: authService}
	taskHandler := &http.TaskHandler{TaskService: taskService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, taskHandler, authService, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSEnabled() {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
