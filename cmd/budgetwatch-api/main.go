package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"budgetwatch/internal/config"
	"budgetwatch/internal/httpapi"
	"budgetwatch/internal/log"
	"budgetwatch/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentAPI})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err)
		os.Exit(1)
	}

	store, err := storage.NewHistoryStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Cannot open history store", log.FieldError, err)
		os.Exit(1)
	}
	defer store.Close()

	latestPath := filepath.Join(cfg.ReportDir, "latest_budget_data.json")
	srv := httpapi.NewServer(":"+cfg.Port, store, latestPath, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting budget API",
			log.FieldOperation, log.OpStartup,
			"port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("API server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("API server stopped gracefully")
}
