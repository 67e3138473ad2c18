package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/snaplet/snaplet/internal/buildinfo"
	"github.com/snaplet/snaplet/internal/logging"
	"github.com/snaplet/snaplet/internal/mockapi"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := mockapi.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(os.Stderr, logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Backend: cfg.LogBackend,
	})
	if err != nil {
		log.Fatalf("logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := mockapi.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
