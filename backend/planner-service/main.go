package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"planner-board/backend/planner-service/bootstrap"
	"planner-board/backend/planner-service/config"
	"planner-board/backend/planner-service/logging"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logging.Logger.Fatalf("Event ID: ENV_LOAD_ERROR, Description: Error loading configuration: %v", err)
	}

	logging.InitLogger(logging.Options{
		SystemName: "planner-service",
		FilePath:   cfg.Log.File,
		Level:      cfg.Log.Level,
	})
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Planner Service...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logging.Logger)
	if err != nil {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: %v", err)
	}
	defer app.Close()

	if err := bootstrap.Serve(ctx, cfg.ServerPort, app.Router(cfg, logging.Logger), logging.Logger); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_FATAL_ERROR, Description: Server failed: %v", err)
		app.Close()
		os.Exit(1)
	}
}
