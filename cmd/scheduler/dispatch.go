package main

import (
	"github.com/spf13/cobra"

	"post_scheduler/internal/app"
	"post_scheduler/internal/domain"
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Publish every post due now and exit",
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
		defer a.Close()

		stats, err := a.DispatchOnce(ctx)
		if err != nil {
			logger.Error("dispatch failed", "error", err)
			return err
		}

		logger.Info("dispatch finished",
			"now", domain.FormatCanonical(stats.Now),
			"due", stats.Due,
			"published", stats.Published,
			"failed", stats.Failed,
			"skipped", stats.Skipped,
			"errors", stats.Errors,
		)
		return nil
	},
}
