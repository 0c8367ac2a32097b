// Package main provides the CLI entry point for repolizer, the
// repository health check orchestration engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func init() {
	if version == "dev" {
		version = getEnvOrDefault("VERSION", version)
	}
	if commit == "unknown" {
		commit = getEnvOrDefault("COMMIT", commit)
	}
}

var rootCmd = &cobra.Command{
	Use:   "repolizer",
	Short: "Repository health check orchestration engine",
	Long:  `Runs pluggable, categorized health checks across a batch of repositories and appends scored results to a JSONL stream.`,
}

func init() {
	rootCmd.PersistentFlags().StringP("repos", "r", "repos.yaml", "repository list file path")
	rootCmd.PersistentFlags().StringP("config", "c", "", "batch configuration file path (optional)")
	rootCmd.PersistentFlags().StringP("weights", "w", "", "category weight overlay file path (optional)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newRepairCommand())
	rootCmd.AddCommand(newListChecksCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("repolizer %s (%s)\n", version, commit)
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
