package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/gala/adapter/cli"
	"github.com/felixgeelhaar/gala/internal/app"
	"github.com/felixgeelhaar/gala/pkg/config"
	"github.com/felixgeelhaar/gala/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gala: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Warn("shutdown cleanup failed", "error", err)
		}
	}()

	cli.SetLogger(logger)
	cli.AddCommand(cli.NewPlanCommand(container))
	cli.ExecuteContext(ctx)
}
