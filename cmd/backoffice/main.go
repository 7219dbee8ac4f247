package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/storefront/backoffice/internal/app"
	"github.com/storefront/backoffice/internal/cli"
	"github.com/storefront/backoffice/internal/metrics"
	"github.com/storefront/backoffice/internal/pkg/config"
	"github.com/storefront/backoffice/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, ".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: config: %v\n", err)
		return cli.ExitInternal
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "backoffice",
	})

	code := cli.Execute(ctx, os.Args[1:], app.Factory(cfg), log, os.Stdin, os.Stdout, os.Stderr)

	if err := metrics.Push(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
		log.Warn().Err(err).Msg("metrics push failed")
	}
	return code
}
