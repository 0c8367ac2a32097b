package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v3"

	"github.com/fabriziosalmi/repolizer/internal/config"
	"github.com/fabriziosalmi/repolizer/internal/util"
)

func newInitCommand() *cobra.Command {
	var outputFile string
	var overwrite bool
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a repository list by scanning a directory for git checkouts",
		Long:  `Walks the current directory for .git checkouts and writes a repos.yaml entry for each one found, ready to feed into "run".`,
		RunE: func(*cobra.Command, []string) error {
			if _, err := os.Stat(outputFile); err == nil && !overwrite {
				color.Yellow("repository list already exists: %s (use --overwrite to replace it)", outputFile)
				return nil
			}

			currentDir, err := os.Getwd()
			if err != nil {
				return err
			}

			color.Green("scanning for git repositories in %s...", currentDir)
			repos, err := util.FindGitRepositories(currentDir, maxDepth)
			if err != nil {
				return err
			}

			if len(repos) == 0 {
				color.Yellow("no git repositories found under %s", currentDir)
				return nil
			}
			color.Green("found %d git repositories", len(repos))

			data, err := yaml.Marshal(&config.Config{Repositories: repos})
			if err != nil {
				return err
			}
			if err := os.WriteFile(outputFile, data, 0600); err != nil {
				return err
			}

			color.Green("wrote %s with %d repositories", outputFile, len(repos))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "repos.yaml", "output repository list path")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite an existing repository list")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 3, "maximum directory depth to scan (0 = unlimited)")
	return cmd
}
