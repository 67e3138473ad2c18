package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/snaplet/snaplet/internal/buildinfo"
	"github.com/snaplet/snaplet/internal/client/cli"
	"github.com/snaplet/snaplet/internal/client/config"
	"github.com/snaplet/snaplet/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
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

	app, err := cli.NewApp(ctx, cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("%v", err)
		}
	}()

	app.Run(ctx)
}
