package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/felixbhw/n17-dash/internal/app"
	"github.com/felixbhw/n17-dash/internal/config"
	"github.com/felixbhw/n17-dash/internal/observability"
	"github.com/felixbhw/n17-dash/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	telemetry, err := observability.Start(cfg, logger)
	if err != nil {
		logger.Error("start telemetry", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Error("close app", "error", err)
		}
	}()

	srv, err := app.NewHTTPServer(container)
	if err != nil {
		logger.Error("build http server", "error", err)
		os.Exit(1)
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	})
	if cfg.LinkerEnabled {
		wg.Go(func() { container.RunLinker(ctx, cfg.LinkerInterval) })
	} else {
		logger.Info("background linker disabled", "reason", "LINKER_ENABLED=false")
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	wg.Wait()

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown telemetry", "error", err)
	}

	logger.Info("http server stopped")
}
