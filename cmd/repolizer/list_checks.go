package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/fabriziosalmi/repolizer/internal/checks"
	"github.com/fabriziosalmi/repolizer/internal/coereg"
)

func newListChecksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-checks",
		Short: "List every registered check and its category",
		RunE: func(*cobra.Command, []string) error {
			registry := coereg.New()
			for _, d := range checks.Builtin() {
				if err := registry.Register(d); err != nil {
					return err
				}
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Category", "Check ID", "Weight"})
			for _, cat := range registry.Categories() {
				for _, d := range registry.ByCategory(cat) {
					t.AppendRow(table.Row{d.Category, d.ID, d.Weight})
				}
			}
			t.Render()
			return nil
		},
	}
}
