package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"post_scheduler/internal/app"
)

var flairsCmd = &cobra.Command{
	Use:   "flairs <subreddit>",
	Short: "Print the link flairs available in a subreddit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			logger.Error("failed to load config", "error", err)
			return err
		}

		ctx, cancel := signalContext(logger)
		defer cancel()

		client := app.NewRedditClient(cfg.Reddit, logger)
		flairs, err := client.LinkFlairs(ctx, args[0])
		if err != nil {
			logger.Error("flair lookup failed", "subreddit", args[0], "error", err)
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(flairs)
	},
}
