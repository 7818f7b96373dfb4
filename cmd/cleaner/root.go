package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"bizreport/internal/config"
	"bizreport/internal/infrastructure"
)

// cliState is populated by the root command before any subcommand runs
type cliState struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	state := &cliState{}

	rootCmd := &cobra.Command{
		Use:   "cleaner",
		Short: "Clean raw sales exports",
		Long: `cleaner turns a raw financial sales export into a typed table:
column names are normalized, currency text becomes integers, dates are
parsed and cross-checked, duplicates are dropped and outliers are clipped
to interquartile-range bounds.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return state.load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&state.configPath, "config", "", "path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&state.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newCleanCmd(state),
		newVerifyCmd(state),
		newServeCmd(state),
		newVersionCmd(),
	)
	return rootCmd
}

func (s *cliState) load() error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if s.logLevel != "" {
		cfg.Logging.Level = s.logLevel
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	s.cfg = cfg
	s.logger = logger
	return nil
}
