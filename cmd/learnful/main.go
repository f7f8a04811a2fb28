package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/yosuakev/learnful/internal/app"
	"github.com/yosuakev/learnful/internal/cli"
	"github.com/yosuakev/learnful/internal/config"
	"github.com/yosuakev/learnful/internal/logging"
	"github.com/yosuakev/learnful/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cli.DescribeError(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Close()

	shutdown, err := telemetry.Setup(ctx, cfg.Tracing)
	if err != nil {
		logger.WithError(err).Warnw("tracing disabled")
	} else {
		defer func() { _ = shutdown(context.Background()) }()
	}

	rt, err := app.Build(ctx, *cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.WithError(err).Warnw("closing runtime")
		}
	}()

	root := cli.NewRootCmd(&cli.App{
		Gateways: rt.Gateways,
		Timers:   rt.Timers,
		Status:   rt,
		Session:  rt.Session,
		Now:      rt.Now,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	})
	return root.ExecuteContext(ctx)
}
