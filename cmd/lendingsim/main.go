package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrMariodude/LibraCore/app/lendingservice"
	"github.com/MrMariodude/LibraCore/app/shared/shell/config"
	"github.com/MrMariodude/LibraCore/lending"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "lendingsim: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "lendingsim: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg Config) error {
	appConfig, err := config.Load(cfg.EnvFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: appConfig.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := config.OpenStore(ctx, appConfig, logger)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", appConfig.StorageEngine, err)
	}
	defer closeStore()

	clock := lending.NewManualClock(lending.SystemClock{}.Now())

	service, err := lendingservice.NewService(store, lendingservice.WithClock(clock))
	if err != nil {
		return fmt.Errorf("creating lending service: %w", err)
	}

	simulation := NewSimulation(service, clock, cfg, logger)

	if err := simulation.Setup(ctx); err != nil {
		return err
	}

	simulation.Run(ctx)

	if err := simulation.Verify(context.WithoutCancel(ctx)); err != nil {
		if stats := simulation.Stats(); stats.Failed > 0 {
			logger.Warn("failed requests may have left outcomes unknown", "failed", stats.Failed)
		}

		return err
	}

	logger.Info("inventory verified", "items", cfg.Items)

	return nil
}
