package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/praxisllmlab/catalogcheck/internal/config"
	"github.com/praxisllmlab/catalogcheck/internal/logging"
	"github.com/praxisllmlab/catalogcheck/internal/secretmanager"
)

const defaultConfigPath = "catalogcheck.yaml"

// errSuiteFailed is returned when the suite ran but did not pass. The
// summary has already been printed.
var errSuiteFailed = errors.New("suite failed")

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
	flagBaseURL   string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", defaultConfigPath, "path to catalogcheck.yaml")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format (text, json, logfmt)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "catalog base URL, overrides the config file")
}

var rootCmd = &cobra.Command{
	Use:   "catalogcheck",
	Short: "End-to-end soft delete and restore checks for a data catalog",
	Long: `catalogcheck logs into the catalog web UI with a real browser, creates a
throwaway table through the REST API, soft deletes and restores it through the
UI and asserts on what the UI shows and which API calls it makes. The table's
service is hard deleted afterwards.

	Examples:
	  catalogcheck run --config catalogcheck.yaml
	  catalogcheck run --scenario "Soft Delete entity table" --headless=false
	  catalogcheck monitor --interval 15m --listen :9108`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadConfig reads the config file, falling back to built-in defaults when
// the default path does not exist, then applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	_, statErr := os.Stat(flagConfig)
	if errors.Is(statErr, os.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = config.Default()
	} else {
		cfg, err = config.Load(flagConfig)
	}
	if err != nil {
		return nil, err
	}

	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}
	setupLogging(cfg)
	if err := secretmanager.ResolveConfig(cmd.Context(), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) {
	opts := logging.DefaultOptions()
	if cfg.Log.Level != "" {
		opts.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		opts.Format = cfg.Log.Format
	}
	if flagLogLevel != "" {
		opts.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		opts.Format = flagLogFormat
	}
	logging.SetDefault(logging.New(opts))
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return fmt.Sprintf("pid-%d", os.Getpid())
	}
	return h
}
