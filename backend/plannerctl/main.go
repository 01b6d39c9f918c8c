// Package main implements plannerctl, the operator CLI for the planner store.
package main

import (
	"context"
	"os"

	"planner-board/backend/planner-service/bootstrap"
	"planner-board/backend/planner-service/config"
	"planner-board/backend/planner-service/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	envFile    string
	jsonOutput bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:          "plannerctl",
	Short:        "Inspect and operate the planner task store",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Environment file to load before the process environment")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level for store diagnostics")
}

// openApp builds the services for the configured store. Tests replace it.
var openApp = func(ctx context.Context) (*bootstrap.App, *config.Config, logrus.FieldLogger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, nil, err
	}
	level := logLevel
	if !rootCmd.PersistentFlags().Changed("log-level") && os.Getenv("LOG_LEVEL") != "" {
		level = cfg.Log.Level
	}
	logger, err := logging.New(logging.Options{SystemName: "plannerctl", FilePath: cfg.Log.File, Level: level})
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Log.File == "" {
		// stdout carries command output
		logger.SetOutput(os.Stderr)
	}

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return app, cfg, logger, nil
}
