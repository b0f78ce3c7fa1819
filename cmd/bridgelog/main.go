package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tfkr-ae/bridgelog"
	"go.uber.org/zap"
)

var (
	// Global flags
	configDir string
	verbose   bool

	cfg    *bridgelog.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bridgelog",
	Short: "StartupBridge activity logging",
	Long: `bridgelog records StartupBridge activity events and delivers them to the
activity sink, queueing them while the sink is unreachable and keeping the
most recent ones in a local mirror for debugging.

Run "bridgelog serve" to host the sink, "bridgelog record" to send an event.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = bridgelog.LoadConfig(configDir)
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg.LogLevel, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		level = "debug"
	}
	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level : %w", err)
	}
	config.Level = atomic
	log, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger : %w", err)
	}
	return log, nil
}

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".bridgelog"
	}
	return filepath.Join(dir, "bridgelog")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", defaultConfigDir(), "Directory holding config.yaml and the local database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
