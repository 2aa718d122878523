package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"revrec/internal/app"
	"revrec/internal/config"
)

func main() {
	once := flag.Bool("once", false, "Run a single sync and exit")
	year := flag.Int("year", time.Now().UTC().Year(), "Year to sync")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	flag.Parse()

	// Logger
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// App
	application, err := app.New(logger, cfg)
	if err != nil {
		logger.Error("failed to initialize app", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		err := application.SyncOnce(ctx, *year)
		_ = application.Close()
		if err != nil {
			logger.Error("sync failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("sync completed")
		return
	}

	// Serve mode: HTTP API plus a periodic background sync for the current year.
	srv := application.HTTPServer(cfg.HTTP.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	ticker := time.NewTicker(cfg.Sync.Interval)
	defer ticker.Stop()
	logger.Info("starting periodic sync", slog.Duration("interval", cfg.Sync.Interval))
	// Kick off immediately
	if err := application.SyncOnce(ctx, *year); err != nil {
		logger.Error("initial sync failed", slog.String("error", err.Error()))
	}
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			if err := application.Close(); err != nil {
				logger.Error("store close failed", slog.String("error", err.Error()))
			}
			return
		case <-ticker.C:
			if err := application.SyncOnce(ctx, time.Now().UTC().Year()); err != nil {
				logger.Error("periodic sync failed", slog.String("error", err.Error()))
			}
		}
	}
}
