package cmd

import (
	"fmt"
	"os"

	"content-cache/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	forceRebuild bool
	forceUpdate  bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "content-cache",
	Short: "User content cache service",
	Long: `Content Cache indexes user content bundles (directories and zip archives),
keeps a persisted catalogue of vehicles, terrains and skins, and serves it over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console + debug config gives ISO8601 timestamps for CLI failures
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&forceRebuild, "force-rebuild", false, "Discard the cache index and rebuild it")
	RootCmd.PersistentFlags().BoolVar(&forceUpdate, "force-update", false, "Rescan content even when the index is current")
}
