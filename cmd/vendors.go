package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"furniture-extractor/adapters"
)

var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "List the registered vendor profiles",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		registry := adapters.NewRegistry(cli.config.Vendors)

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Name", "Base URL", "Listing paths", "Login"})
		for _, p := range registry.All() {
			login := ""
			if p.Login != nil {
				login = "yes"
			}
			t.AppendRow(table.Row{p.ID, p.Name, p.BaseURL, strings.Join(p.ListingPaths, "\n"), login})
		}
		t.Render()
	},
}

func init() {
	rootCmd.AddCommand(vendorsCmd)
}
