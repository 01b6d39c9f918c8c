package main

import (
	"os"
	"os/signal"
	"syscall"

	"planner-board/backend/planner-service/bootstrap"

	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the planner HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, cfg, logger, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		port := cfg.ServerPort
		if servePort != "" {
			port = servePort
		}
		return bootstrap.Serve(ctx, port, app.Router(cfg, logger), logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "Listen port (defaults to SERVER_PORT)")
}
