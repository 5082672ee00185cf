package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/fhirmeds/fhirmeds/internal/cli"
	"github.com/fhirmeds/fhirmeds/internal/config"
	"github.com/fhirmeds/fhirmeds/internal/logging"
)

func main() {
	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		logger.Error(context.Background(), "startup failed", "error", err.Error())
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(context.Background(), os.Args[1:]); err != nil {
		logger.Error(context.Background(), "command failed", "error", err.Error())
		os.Exit(1)
	}
}
