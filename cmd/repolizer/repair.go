package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fabriziosalmi/repolizer/internal/persistence"
)

func newRepairCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repair [output-file]",
		Short: "Repair a possibly-corrupted JSONL result stream",
		Long:  `Scans a result stream written by "run", quarantines unrepairable or duplicate lines into a sibling .corrupted file, and conservatively fixes trailing commas and stray quotes where possible.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			result, err := persistence.Repair(args[0])
			if err != nil {
				color.Red("repair failed: %v", err)
				return err
			}

			color.Green("valid: %d  repaired: %d  unrepairable: %d  duplicates: %d",
				result.Valid, result.Repaired, result.Unrepairable, result.Duplicates)
			color.Cyan("backup: %s", result.BackupPath)
			if result.QuarantinePath != "" {
				color.Yellow("quarantine: %s", result.QuarantinePath)
			}
			return nil
		},
	}
}
