package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jjohnson-47/nowqueue/adapter/cli"
	"github.com/jjohnson-47/nowqueue/internal/app"
	"github.com/jjohnson-47/nowqueue/pkg/config"
	"github.com/jjohnson-47/nowqueue/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	cli.SetLogger(logger)
	cli.SetApp(container)
	cli.Execute(ctx)
}
