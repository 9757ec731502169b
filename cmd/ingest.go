package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagWithImageData bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <product-url>",
	Short: "Extract, classify and persist a single product page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := openExtractor(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		record, err := e.Ingest(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !flagWithImageData {
			for i := range record.Images {
				record.Images[i].Data = nil
			}
		}

		jsonData, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(jsonData))
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&flagWithImageData, "image-data", false, "Include encoded image bytes in the output")
	rootCmd.AddCommand(ingestCmd)
}
