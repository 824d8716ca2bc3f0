package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/padelhq/tournament-engine/brackets"
	"github.com/padelhq/tournament-engine/config"
	"github.com/padelhq/tournament-engine/db"
	"github.com/padelhq/tournament-engine/handlers"
	"github.com/padelhq/tournament-engine/repositories"
	api "github.com/padelhq/tournament-engine/routes"
	"github.com/padelhq/tournament-engine/services"
	"github.com/padelhq/tournament-engine/storage"
)

// disciplinaryExpiryInterval controls how often expired disciplinary
// points are deactivated.
const disciplinaryExpiryInterval = 1 * time.Hour

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

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

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	poolRepo := repositories.NewPostgresPoolRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	disciplinaryRepo := repositories.NewPostgresDisciplinaryRepository(dbConn)
	logger.Info("repositories initialized")

	tournamentService := services.NewTournamentService(
		tournamentRepo,
		registrationRepo,
		poolRepo,
		matchRepo,
		uploader,
		logger,
	)
	registrationService := services.NewRegistrationService(registrationRepo, tournamentRepo, logger)
	drawService := services.NewDrawService(
		dbConn,
		tournamentRepo,
		registrationRepo,
		poolRepo,
		matchRepo,
		wsHub,
		logger,
		func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) },
	)
	advanceService := services.NewAdvanceService(dbConn, tournamentRepo, matchRepo, wsHub, logger)
	matchService := services.NewMatchService(
		dbConn,
		matchRepo,
		registrationRepo,
		tournamentRepo,
		disciplinaryRepo,
		wsHub,
		logger,
	)
	disciplinaryService := services.NewDisciplinaryService(disciplinaryRepo, logger)
	logger.Info("services initialized")

	// Deactivate expired disciplinary points in the background.
	go func() {
		ticker := time.NewTicker(disciplinaryExpiryInterval)
		defer ticker.Stop()
		logger.Info("disciplinary expiry scheduler started", slog.Duration("interval", disciplinaryExpiryInterval))

		for range ticker.C {
			n, err := disciplinaryService.ExpireStale(context.Background())
			if err != nil {
				logger.Error("disciplinary expiry run failed", slog.Any("error", err))
				continue
			}
			if n > 0 {
				logger.Info("disciplinary points expired", slog.Int64("count", n))
			}
		}
	}()

	tournamentHandler := handlers.NewTournamentHandler(tournamentService, drawService, advanceService, matchService)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	matchHandler := handlers.NewMatchHandler(matchService, disciplinaryService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		tournamentHandler,
		registrationHandler,
		matchHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

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
