// Command libracore runs the lending HTTP API together with the overdue sweep.
//
// Configuration comes from the environment, optionally seeded from an env file (see -env).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrMariodude/LibraCore/app/httpapi"
	"github.com/MrMariodude/LibraCore/app/lendingservice"
	"github.com/MrMariodude/LibraCore/app/overdue"
	"github.com/MrMariodude/LibraCore/app/shared/shell/config"
	"github.com/MrMariodude/LibraCore/lending"
)

const readHeaderTimeout = 10 * time.Second

func main() {
	envFile := flag.String("env", ".env", "optional env file with configuration overrides")
	flag.Parse()

	if err := run(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "libracore: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := config.OpenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.StorageEngine, err)
	}
	defer closeStore()

	clock := lending.SystemClock{}

	service, err := lendingservice.NewService(store,
		lendingservice.WithClock(clock),
		lendingservice.WithContextualLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("creating lending service: %w", err)
	}

	sweeper, err := overdue.NewSweeper(store.Loans(), clock,
		overdue.WithSchedule(cfg.OverdueSchedule),
		overdue.WithPenaltyPolicy(service.PenaltyPolicy()),
		overdue.WithContextualLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("creating overdue sweep: %w", err)
	}

	api, err := httpapi.NewAPI(service, httpapi.WithContextualLogger(logger))
	if err != nil {
		return fmt.Errorf("creating http api: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	if err := sweeper.Start(ctx); err != nil {
		return fmt.Errorf("starting overdue sweep: %w", err)
	}

	serverDone := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr, "storage_engine", cfg.StorageEngine)
		serverDone <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverDone:
		if !errors.Is(err, http.ErrServerClosed) {
			sweeper.Stop(context.Background())
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown incomplete", "error", err.Error())
	}

	sweeper.Stop(shutdownCtx)
	logger.Info("libracore stopped")

	return nil
}
