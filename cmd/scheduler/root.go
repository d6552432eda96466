package main

import (
	"github.com/spf13/cobra"
)

var (
	configPath       string
	logLevelOverride string
)

var rootCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Schedule Reddit posts and publish them when due",
	Long: `scheduler stores Reddit posts with a target time and publishes each one
once its minute arrives, to a subreddit or to the account's own profile.
Failed attempts keep their last error and are retried on the next tick.`,
	Version:      Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevelOverride, "log-level", "", "override log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dispatchCmd)
	rootCmd.AddCommand(flairsCmd)
}
