// Package cmd provides the CLI commands for shopindex.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/shopindex/internal/config"
	"github.com/Aman-CERP/shopindex/internal/logging"
	"github.com/Aman-CERP/shopindex/pkg/version"
)

// skipConfig marks commands that must run without a valid configuration.
const skipConfig = "skip_config"

var (
	configDir      string
	debugMode      bool
	cfg            *config.Config
	loggingCleanup func()
)

// NewRootCmd creates the root command for the shopindex CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shopindex",
		Short: "Full-text search index for the shop catalog",
		Long: `shopindex keeps one SQLite FTS5 index in step with the shop's products,
variants, price tiers, orders, designs, lock technologies and images.

Run 'shopindex ensure' at deploy time to bootstrap the index. It only
rebuilds when the index content version changed or the index is empty.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("shopindex version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory containing .shopindex.yaml")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.shopindex/logs/")

	cmd.PersistentPreRunE = loadConfigAndLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newEnsureCmd())
	cmd.AddCommand(newRebuildCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// loadConfigAndLogging loads the configuration and installs the default logger.
func loadConfigAndLogging(cmd *cobra.Command, _ []string) error {
	logCfg := logging.DefaultConfig()

	if cmd.Annotations[skipConfig] == "" {
		loaded, err := config.Load(configDir)
		if err != nil {
			return err
		}
		cfg = loaded
		logCfg.Level = cfg.Logging.Level
		logCfg.FilePath = cfg.Logging.FilePath
		logCfg.MaxSizeMB = cfg.Logging.MaxSizeMB
		logCfg.MaxFiles = cfg.Logging.MaxFiles
	}
	if debugMode {
		logCfg = logging.DebugConfig()
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	if debugMode {
		slog.Debug("debug_logging_enabled", slog.String("log_file", logCfg.FilePath))
	}
	return nil
}

// stopLogging closes the log file, if any.
func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
