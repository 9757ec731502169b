// Package api exposes the extraction pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"furniture-extractor/extractor"
	"furniture-extractor/internal/types"
)

// Pipeline is the part of the extractor the HTTP surface drives
type Pipeline interface {
	Vendors() []types.VendorProfile
	Trigger(vendorIDs []string, maxProducts int) (extractor.Ack, error)
	RunStatus(runID string) (extractor.RunSummary, error)
	Ingest(ctx context.Context, productURL string) (*types.ProductRecord, error)
	Ping(ctx context.Context) error
}

// RunRequest is the body of POST /runs
type RunRequest struct {
	VendorIDs             []string `json:"vendor_ids"`
	MaxProductsPerListing int      `json:"max_products_per_listing"`
}

// IngestRequest is the body of POST /ingest
type IngestRequest struct {
	URL string `json:"url" binding:"required"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// VendorResponse describes one registered vendor
type VendorResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	BaseURL      string   `json:"base_url"`
	Domains      []string `json:"domains"`
	ListingPaths []string `json:"listing_paths"`
	Login        bool     `json:"login"`
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	pipeline      Pipeline
	ingestTimeout time.Duration
	logger        types.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(pipeline Pipeline, config *types.Config, logger types.Logger) *Handler {
	return &Handler{
		pipeline:      pipeline,
		ingestTimeout: config.API.IngestTimeout,
		logger:        logger,
	}
}

// SetupRouter creates and configures the gin router. Metrics are served from gatherer when it is not nil.
func SetupRouter(config *types.Config, handler *Handler, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(handler.logger))
	router.Use(CORSMiddleware(config.API.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/vendors", handler.ListVendors)
	router.POST("/runs", handler.TriggerRun)
	router.GET("/runs/:id", handler.GetRun)
	router.POST("/ingest", handler.Ingest)

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return router
}

// HealthCheck reports whether the catalog store is reachable
func (h *Handler) HealthCheck(c *gin.Context) {
	if err := h.pipeline.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// ListVendors returns the registered vendor profiles
func (h *Handler) ListVendors(c *gin.Context) {
	profiles := h.pipeline.Vendors()
	vendors := make([]VendorResponse, 0, len(profiles))
	for _, p := range profiles {
		vendors = append(vendors, VendorResponse{
			ID:           p.ID,
			Name:         p.Name,
			BaseURL:      p.BaseURL,
			Domains:      p.Domains,
			ListingPaths: p.ListingPaths,
			Login:        p.Login != nil,
		})
	}
	c.JSON(http.StatusOK, gin.H{"vendors": vendors})
}

// TriggerRun starts a run in the background and acknowledges it with 202
func (h *Handler) TriggerRun(c *gin.Context) {
	var req RunRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}
	}
	if req.MaxProductsPerListing < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "max_products_per_listing cannot be negative"})
		return
	}

	ack, err := h.pipeline.Trigger(req.VendorIDs, req.MaxProductsPerListing)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, types.ErrUnknownVendor) {
			status = http.StatusBadRequest
		}
		c.JSON(status, ErrorResponse{Error: err.Error(), Reason: types.ReasonLabel(err)})
		return
	}

	h.logger.WithFields(logrus.Fields{"run_id": ack.RunID, "vendors": ack.VendorCount}).Info("Run triggered")
	c.JSON(http.StatusAccepted, ack)
}

// GetRun returns the status and summary of a triggered run
func (h *Handler) GetRun(c *gin.Context) {
	summary, err := h.pipeline.RunStatus(c.Param("id"))
	if err != nil {
		if errors.Is(err, types.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Ingest extracts and persists a single product page
func (h *Handler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if !validProductURL(req.URL) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "url must be an absolute http(s) url"})
		return
	}

	ctx := c.Request.Context()
	if h.ingestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.ingestTimeout)
		defer cancel()
	}

	record, err := h.pipeline.Ingest(ctx, strings.TrimSpace(req.URL))
	if err != nil {
		c.JSON(ingestStatus(err), ErrorResponse{Error: err.Error(), Reason: types.ReasonLabel(err)})
		return
	}
	c.JSON(http.StatusOK, record)
}

func ingestStatus(err error) int {
	var (
		timeout types.RenderTimeout
		render  types.RenderError
		auth    types.AuthError
	)
	switch {
	case errors.Is(err, types.ErrInsufficient):
		return http.StatusUnprocessableEntity
	case errors.As(err, &timeout), errors.As(err, &render), errors.As(err, &auth):
		return http.StatusBadGateway
	case errors.Is(err, types.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func validProductURL(raw string) bool {
	parsed, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
