package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/praxisllmlab/catalogcheck/internal/catalog"
)

var (
	flagCleanupServices []string
	flagCleanupCategory string
)

func init() {
	cleanupCmd.Flags().StringArrayVar(&flagCleanupServices, "service", nil, "service name to hard delete (repeatable, required)")
	cleanupCmd.Flags().StringVar(&flagCleanupCategory, "category", catalog.DatabaseServices, "service category")
	_ = cleanupCmd.MarkFlagRequired("service")

	rootCmd.AddCommand(cleanupCmd)
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Hard delete fixture services left behind by an interrupted run",
	Long: `Log in through the REST API and hard delete the named services with
everything below them. No browser is started.

	Examples:
	  catalogcheck cleanup --service catalogcheck-database-service-1a2b3c4d`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		client := newCatalogClient(cfg)

		login, err := client.Login(ctx, cfg.Auth.Username, cfg.Auth.Password)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		api := client.Authorized(login.AccessToken)

		for _, name := range flagCleanupServices {
			start := time.Now()
			if err := api.HardDeleteService(ctx, flagCleanupCategory, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s/%s (%s)\n", flagCleanupCategory, name, time.Since(start).Round(time.Millisecond))
		}
		return nil
	},
}
