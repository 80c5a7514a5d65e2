package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bi-service/internal/auth"
	"bi-service/internal/config"
	"bi-service/internal/db"
	httphandler "bi-service/internal/http"
	"bi-service/internal/http/middleware"
	"bi-service/internal/interpreter"
	"bi-service/internal/logger"
	"bi-service/internal/notify"
	"bi-service/internal/repository"
	"bi-service/internal/service"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

type inspectionBackend interface {
	repository.InspectionSource
	service.GarageDirectory
}

type gormBackend struct {
	*repository.InspectionRepository
	*repository.GarageRepository
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appLogger := logger.New(cfg.Environment)

	backend, err := openBackend(cfg, appLogger)
	if err != nil {
		appLogger.Error().Err(err).Msg("failed to open inspection store")
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := repository.NewCachedStore(backend, appLogger)
	dispatcher := service.NewDispatcher(cache, backend, appLogger)
	notifier := notify.New(cfg.Query.NoticeTTL)
	queryService := service.NewQueryService(newInterpreter(cfg, appLogger), dispatcher, notifier, cfg.Query.SessionIdleTTL, appLogger)
	dashboardService := service.NewDashboardService(cache, cache, appLogger)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(queryService, dashboardService, appLogger)
	relay := httphandler.NewRelayHandler(ctx, cfg.Relay, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, relay, authMiddleware, cfg.Environment, appLogger)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info().Str("addr", addr).Bool("demo", cfg.DemoMode).Msg("starting bi service")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error().Err(err).Msg("failed to start server")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	appLogger.Info().Msg("server stopped")
	return nil
}

func openBackend(cfg *config.Config, log zerolog.Logger) (inspectionBackend, error) {
	if cfg.DemoMode {
		log.Warn().Msg("demo mode: serving simulated inspections")
		return repository.NewSimulatedStore(cfg.Inspections.EnterpriseID, time.Now()), nil
	}

	database, err := db.New(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database, log); err != nil {
		return nil, err
	}
	return gormBackend{
		InspectionRepository: repository.NewInspectionRepository(database, cfg.Inspections.EnterpriseID),
		GarageRepository:     repository.NewGarageRepository(database),
	}, nil
}

func newInterpreter(cfg *config.Config, log zerolog.Logger) *interpreter.Interpreter {
	var completer interpreter.Completer
	if cfg.Interpreter.RelayURL != "" {
		completer = interpreter.NewRelayClient(interpreter.RelayConfig{
			URL:         cfg.Interpreter.RelayURL,
			Model:       cfg.Interpreter.Model,
			Temperature: cfg.Interpreter.Temperature,
			MaxTokens:   cfg.Interpreter.MaxTokens,
			Timeout:     cfg.Interpreter.Timeout,
		})
	}
	return interpreter.New(completer, log.With().Str("component", "interpreter").Logger())
}
