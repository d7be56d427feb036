package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var flagPingTimeout time.Duration

func init() {
	pingCmd.Flags().DurationVar(&flagPingTimeout, "timeout", 0, "how long to wait (default timeouts.ready)")

	rootCmd.AddCommand(pingCmd)
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Wait for the catalog server and print its version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		timeout := flagPingTimeout
		if timeout == 0 {
			timeout = cfg.Timeouts.Ready
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		start := time.Now()
		v, err := newCatalogClient(cfg).WaitReady(ctx, readyPollInterval)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (revision %s) ready after %s\n",
			cfg.BaseURL, v.Version, v.Revision, time.Since(start).Round(time.Millisecond))
		return nil
	},
}
