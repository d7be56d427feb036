package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/praxisllmlab/catalogcheck/internal/suite/restore"
)

func init() {
	rootCmd.AddCommand(scenariosCmd)
}

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the scenarios in execution order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s := restore.New(restore.Deps{})
		for i, name := range s.Names() {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, name)
		}
		return nil
	},
}
