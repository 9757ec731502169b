package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"furniture-extractor/adapters"
	"furniture-extractor/catalog"
	"furniture-extractor/extractor"
	"furniture-extractor/internal/config"
	"furniture-extractor/internal/types"
)

var (
	flagConfig   string
	flagVerbose  bool
	flagHTTPOnly bool
	flagCatalog  string
)

// cli holds what every command needs once flags and configuration are parsed
var cli struct {
	config *types.Config
	logger *logrus.Logger
}

var rootCmd = &cobra.Command{
	Use:   "furniture-extractor",
	Short: "Extract and normalize furniture products from vendor websites",
	Long: `furniture-extractor crawls furniture vendor sites, extracts product fields,
downloads product imagery, classifies each product and upserts it into the catalog.

Usage:
  furniture-extractor run [--vendors a,b] [--max N]
  furniture-extractor ingest <product-url>
  furniture-extractor vendors
  furniture-extractor links <vendor-id>
  furniture-extractor export [--vendor id] [--output file]`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load .env file if present
		_ = godotenv.Load()

		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagHTTPOnly {
			cfg.Session.UseHeadlessBrowser = false
		}
		if flagCatalog != "" {
			cfg.Catalog.File = flagCatalog
			cfg.Catalog.URL = ""
		}

		logger, err := config.NewLogger(cfg.Log, flagVerbose, os.Stderr)
		if err != nil {
			return err
		}

		cli.config = cfg
		cli.logger = logger
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&flagHTTPOnly, "http-only", false, "Use HTTP requests only (disable headless browser)")
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "SQLite catalog file (overrides config)")
}

// openExtractor opens the catalog store and builds the pipeline
func openExtractor(ctx context.Context) (*extractor.Extractor, func(), error) {
	store, err := catalog.Open(ctx, cli.config.Catalog)
	if err != nil {
		return nil, nil, err
	}

	e := extractor.NewExtractor(
		cli.config,
		adapters.NewRegistry(cli.config.Vendors),
		store,
		config.NewStaticCredentials(cli.config.Credentials),
		cli.logger,
	)
	cleanup := func() {
		e.Close()
		if err := store.Close(); err != nil {
			cli.logger.Warnf("Failed to close catalog: %v", err)
		}
	}
	return e, cleanup, nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
