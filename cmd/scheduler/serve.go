package main

import (
	"github.com/spf13/cobra"

	"post_scheduler/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the dispatch loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			logger.Error("failed to load config", "error", err)
			return err
		}

		ctx, cancel := signalContext(logger)
		defer cancel()

		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to start", "error", err)
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				logger.Warn("shutdown", "error", err)
			}
		}()

		if err := a.Run(ctx); err != nil {
			logger.Error("scheduler stopped", "error", err)
			return err
		}
		logger.Info("scheduler stopped")
		return nil
	},
}
