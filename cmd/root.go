package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ellavondegurechaff/packforge/packforge"
	"github.com/ellavondegurechaff/packforge/packforge/logger"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"

	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "packforge",
	Short:         "PackForge pack-opening economy server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "path to config")
}

// Execute runs the root command.
func Execute(v, c string) {
	version, commit = v, c
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("Command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// loadConfig reads the config file and installs the logger it describes.
func loadConfig() (*packforge.Config, error) {
	cfg, err := packforge.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(logger.NewHandler("PackForge", cfg.Log.Level)))
	return cfg, nil
}
