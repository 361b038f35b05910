package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orgball2608/artfeed-bot/internal/app"
	"github.com/orgball2608/artfeed-bot/pkg/config"
	"github.com/orgball2608/artfeed-bot/pkg/logger"
	"go.uber.org/fx"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Opts{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	app := fx.New(
		fx.Logger(log),
		fx.StartTimeout(time.Minute),
		app.Module(cfg),
	)

	// Start the application
	if err := app.Start(context.Background()); err != nil {
		log.Error("Failed to start application", "error", err)
		os.Exit(1)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	// Gracefully shutdown the application
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error("Failed to stop application", "error", err)
		os.Exit(1)
	}
}
