package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/spikers-tournament/brackets"
	"github.com/Dosada05/spikers-tournament/config"
	"github.com/Dosada05/spikers-tournament/db"
	"github.com/Dosada05/spikers-tournament/handlers"
	"github.com/Dosada05/spikers-tournament/realtime"
	"github.com/Dosada05/spikers-tournament/repositories"
	api "github.com/Dosada05/spikers-tournament/routes"
	"github.com/Dosada05/spikers-tournament/services"
	"github.com/Dosada05/spikers-tournament/storage"
	"github.com/go-chi/chi/v5"
)

// @title                       Spikers Tournament API
// @version                     1.0
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("log_level", cfg.LogLevel.String()),
		slog.Bool("auth_enabled", cfg.JWTSecretKey != ""),
		slog.Bool("archive_enabled", cfg.ArchiveEnabled()),
	)

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.Migrate(migrateCtx, dbConn)
	cancelMigrate()
	if err != nil {
		logger.Error("failed to apply schema", slog.Any("error", err))
		os.Exit(1)
	}

	archiver := storage.NewNopArchiver()
	if cfg.ArchiveEnabled() {
		archiver, err = storage.NewCloudflareR2Archiver(context.Background(), storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 archiver", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 archiver initialized", slog.String("bucket", cfg.R2BucketName))
	}

	wsHub := realtime.NewHub(logger)
	go wsHub.Run()
	defer wsHub.Stop()
	logger.Info("WebSocket Hub started")

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	sessionRepo := repositories.NewPostgresSessionRepository(dbConn)

	tournamentService := services.NewTournamentService(
		brackets.NewEngine(),
		tournamentRepo,
		sessionRepo,
		wsHub,
		archiver,
		logger,
	)

	recoverCtx, cancelRecover := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := tournamentService.RecoverActive(recoverCtx); err != nil {
		logger.Error("failed to recover active tournaments", slog.Any("error", err))
	}
	cancelRecover()

	tournamentHandler := handlers.NewTournamentHandler(tournamentService, logger)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSAllowedOrigins, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		JWTSecretKey:   cfg.JWTSecretKey,
	}, tournamentHandler, webSocketHandler)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
