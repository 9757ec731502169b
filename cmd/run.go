package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"furniture-extractor/extractor"
)

var (
	flagVendors []string
	flagMax     int
)

var errVendorFailed = errors.New("one or more vendor runs failed")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline for one or more vendors",
	Long: `Run discovers product links on each vendor's listing pages, extracts every
product and upserts it into the catalog. Without --vendors every registered vendor runs.

Examples:
  furniture-extractor run
  furniture-extractor run --vendors fourhands,loloi --max 20`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagMax < 0 {
			return fmt.Errorf("--max cannot be negative")
		}

		e, cleanup, err := openExtractor(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		startTime := time.Now()
		summary := e.Run(cmd.Context(), flagVendors, flagMax)
		cli.logger.Infof("Extraction completed in %v", time.Since(startTime))

		printSummary(summary)
		if summary.Failed() {
			return errVendorFailed
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&flagVendors, "vendors", nil, "Comma-separated vendor ids (default: all)")
	runCmd.Flags().IntVar(&flagMax, "max", 0, "Maximum products per listing page (default from config)")
	rootCmd.AddCommand(runCmd)
}

func printSummary(summary extractor.RunSummary) {
	t := newTable()
	t.SetTitle("Run " + summary.RunID)
	t.AppendHeader(table.Row{"Vendor", "State", "Discovered", "Persisted", "Created", "Updated", "Skipped", "Image errors", "Error"})
	for _, v := range summary.Vendors {
		t.AppendRow(table.Row{
			v.Vendor, v.State, v.Discovered, v.Persisted, v.Created, v.Updated,
			formatReasons(v.Skipped), v.ImageErrors, v.Error,
		})
	}
	t.AppendFooter(table.Row{
		"Total", fmt.Sprintf("%d vendors", summary.Attempted()), summary.Discovered(), summary.Persisted(),
		"", "", formatReasons(summary.Skipped()), "", "",
	})
	t.Render()
}

func formatReasons(counts map[string]int) string {
	if len(counts) == 0 {
		return "0"
	}
	reasons := make([]string, 0, len(counts))
	for reason := range counts {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)

	parts := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		parts = append(parts, fmt.Sprintf("%s=%d", reason, counts[reason]))
	}
	return strings.Join(parts, " ")
}
