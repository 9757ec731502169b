package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagExportVendor string
	flagOutput       string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write catalog records as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := openExtractor(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if flagOutput != "" {
			return e.ExportToFile(cmd.Context(), flagExportVendor, flagOutput)
		}
		_, err = e.ExportJSON(cmd.Context(), flagExportVendor, os.Stdout)
		return err
	},
}

func init() {
	exportCmd.Flags().StringVar(&flagExportVendor, "vendor", "", "Only export this vendor id")
	exportCmd.Flags().StringVar(&flagOutput, "output", "", "Output file path (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}
