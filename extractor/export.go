package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"furniture-extractor/internal/types"
)

// ExportJSON writes the catalog records of vendorID (every vendor when empty) to w
func (e *Extractor) ExportJSON(ctx context.Context, vendorID string, w io.Writer) (int, error) {
	records, err := e.store.List(ctx, vendorID, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to list catalog records: %w", err)
	}
	if records == nil {
		records = []*types.ProductRecord{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return 0, fmt.Errorf("failed to marshal records to JSON: %w", err)
	}
	return len(records), nil
}

// ExportToFile saves the catalog records of vendorID to a JSON file
func (e *Extractor) ExportToFile(ctx context.Context, vendorID, filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to write results to file: %w", err)
	}
	n, err := e.ExportJSON(ctx, vendorID, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	e.logger.Infof("%d records saved to %s", n, filename)
	return nil
}
