package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fabriziosalmi/repolizer/internal/batch"
	"github.com/fabriziosalmi/repolizer/internal/checks"
	"github.com/fabriziosalmi/repolizer/internal/coeagg"
	"github.com/fabriziosalmi/repolizer/internal/coereg"
	"github.com/fabriziosalmi/repolizer/internal/coesnap"
	"github.com/fabriziosalmi/repolizer/internal/config"
	"github.com/fabriziosalmi/repolizer/internal/engine"
	"github.com/fabriziosalmi/repolizer/internal/obslog"
	"github.com/fabriziosalmi/repolizer/internal/persistence"
	"github.com/fabriziosalmi/repolizer/internal/util"
)

func newRunCommand() *cobra.Command {
	var tag string
	var categories []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run health checks across the configured repositories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reposPath, _ := cmd.Flags().GetString("repos")
			configPath, _ := cmd.Flags().GetString("config")
			weightsPath, _ := cmd.Flags().GetString("weights")
			logLevel, _ := cmd.Flags().GetString("log-level")

			return runBatch(reposPath, configPath, weightsPath, logLevel, tag, categories)
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "filter repositories by tag")
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "restrict to these check categories (default: all)")
	return cmd
}

func runBatch(reposPath, configPath, weightsPath, logLevel, tag string, categories []string) error {
	logger := obslog.NewConsole(logLevel)

	repoList, err := config.LoadConfig(reposPath)
	if err != nil {
		color.Red("configuration error: %v", err)
		os.Exit(int(batch.ExitConfigError))
	}

	var cfg config.Configuration
	if configPath != "" {
		cfg, err = config.LoadConfiguration(configPath)
		if err != nil {
			color.Red("configuration error: %v", err)
			os.Exit(int(batch.ExitConfigError))
		}
	} else {
		cfg = config.DefaultConfiguration()
	}
	if len(categories) > 0 {
		cfg.Categories = categories
	}

	weights, err := config.LoadCategoryWeights(weightsPath)
	if err != nil && weightsPath != "" {
		color.Red("configuration error: %v", err)
		os.Exit(int(batch.ExitConfigError))
	}

	registry := coereg.New()
	for _, d := range checks.Builtin() {
		if err := registry.Register(d); err != nil {
			color.Red("registry error: %v", err)
			os.Exit(int(batch.ExitRegistryError))
		}
	}

	eng := engine.New(registry, engine.Config{
		MaxConcurrency: cfg.MaxConcurrency,
		CheckTimeout:   cfg.CheckTimeout(),
		MemoryLimitMB:  cfg.MemoryLimitMB,
	}, logger)

	writer, err := persistence.NewWriter(cfg.OutputPath, logger)
	if err != nil {
		color.Red("persistence error: %v", err)
		os.Exit(int(batch.ExitOtherFailure))
	}
	defer writer.Close()

	runner := batch.NewRunner(registry, eng, writer, logger, coeagg.Options{
		StrictZeroInclusion: cfg.StrictZeroInclusion,
		CategoryWeights:     weights.Weights,
	}, batch.Context{
		BatchSize:      cfg.BatchSize,
		MaxConcurrency: cfg.MaxConcurrency,
		MemoryLimitMB:  cfg.MemoryLimitMB,
	})

	entries := toSnapshotEntries(repoList.FilterRepositoriesByTag(tag))
	if len(entries) == 0 {
		color.Yellow("no repositories matched tag %q", tag)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary := runner.Run(ctx, entries, cfg.Categories, func() time.Time { return time.Now().UTC() })

	printSummary(summary)
	if err := writer.Close(); err != nil {
		color.Red("persistence error on close: %v", err)
		os.Exit(int(batch.ExitOtherFailure))
	}

	os.Exit(int(summary.ExitCode))
	return nil
}

func toSnapshotEntries(repos []config.Repository) []coesnap.Entry {
	entries := make([]coesnap.Entry, 0, len(repos))
	for i, r := range repos {
		fullName := r.Name
		if owner, name, err := util.ExtractOwnerAndRepo(r.URL); err == nil {
			fullName = owner + "/" + name
		}
		entries = append(entries, coesnap.Entry{
			ID:        fmt.Sprintf("%d", i),
			Name:      r.Name,
			FullName:  fullName,
			LocalPath: util.GetRepoDir(r),
		})
	}
	return entries
}

func printSummary(s batch.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Repositories", "Written", "Cancelled", "Exit Code"})
	t.AppendRow(table.Row{s.TotalRepos, s.Written, s.Cancelled, int(s.ExitCode)})
	t.Render()
}
