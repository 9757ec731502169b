package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"furniture-extractor/adapters"
	"furniture-extractor/catalog"
	"furniture-extractor/extractor"
	"furniture-extractor/internal/api"
	"furniture-extractor/internal/config"
	"furniture-extractor/internal/types"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	flag.Parse()

	// Load .env file if present
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	// API_PORT is kept for existing deployments
	if envPort := os.Getenv("API_PORT"); envPort != "" {
		cfg.API.Port = envPort
	}

	logger, err := config.NewLogger(cfg.Log, *verbose, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logging: %v\n", err)
		os.Exit(1)
	}
	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}

func serve(ctx context.Context, cfg *types.Config, logger *logrus.Logger) error {
	store, err := catalog.Open(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	registry := adapters.NewRegistry(cfg.Vendors)
	pipeline := extractor.NewExtractor(cfg, registry, store, config.NewStaticCredentials(cfg.Credentials), logger)
	defer pipeline.Close()

	handler := api.NewHandler(pipeline, cfg, logger)
	router := api.SetupRouter(cfg, handler, pipeline.Metrics().Registry)

	server := &http.Server{
		Addr:              ":" + cfg.API.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Infof("Starting API server on port %s with %d vendors", cfg.API.Port, len(registry.IDs()))
	logger.Info("Available endpoints:")
	logger.Info("  GET  /health    - Health check")
	logger.Info("  GET  /vendors   - Registered vendors")
	logger.Info("  POST /runs      - Start a run for vendor ids")
	logger.Info("  GET  /runs/:id  - Run status and summary")
	logger.Info("  POST /ingest    - Extract a single product url")
	logger.Info("  GET  /metrics   - Prometheus metrics")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
