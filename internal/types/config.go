package types

import (
	"fmt"
	"net/url"
	"time"
)

// DefaultUserAgent is the client identity presented to vendor sites
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds the configuration for the extractor
type Config struct {
	Session     SessionConfig         `mapstructure:"session"`
	Run         RunConfig             `mapstructure:"run"`
	Images      ImageConfig           `mapstructure:"images"`
	Catalog     CatalogConfig         `mapstructure:"catalog"`
	API         APIConfig             `mapstructure:"api"`
	Log         LogConfig             `mapstructure:"log"`
	Credentials map[string]Credential `mapstructure:"credentials"`
	Vendors     []VendorProfile       `mapstructure:"vendors"`
}

// SessionConfig controls page rendering
type SessionConfig struct {
	RequestDelay       time.Duration `mapstructure:"request_delay"`
	Timeout            time.Duration `mapstructure:"timeout"`
	LoginTimeout       time.Duration `mapstructure:"login_timeout"`
	RenderRetries      int           `mapstructure:"render_retries"`
	SettleDelay        time.Duration `mapstructure:"settle_delay"`
	UseHeadlessBrowser bool          `mapstructure:"use_headless_browser"`
	NoSandbox          bool          `mapstructure:"no_sandbox"`
	UserAgent          string        `mapstructure:"user_agent"`
}

// RunConfig controls vendor runs
type RunConfig struct {
	MaxProductsPerListing int           `mapstructure:"max_products_per_listing"`
	MaxConcurrentVendors  int           `mapstructure:"max_concurrent_vendors"`
	Timeout               time.Duration `mapstructure:"timeout"`
	PersistRetries        int           `mapstructure:"persist_retries"`
}

// ImageConfig controls image acquisition
type ImageConfig struct {
	MaxImages          int           `mapstructure:"max_images"`
	MaxDimension       int           `mapstructure:"max_dimension"`
	Quality            int           `mapstructure:"quality"`
	MinBytes           int           `mapstructure:"min_bytes"`
	Timeout            time.Duration `mapstructure:"timeout"`
	Concurrency        int           `mapstructure:"concurrency"`
	CacheSize          int           `mapstructure:"cache_size"`
	PlaceholderMarkers []string      `mapstructure:"placeholder_markers"`
}

// CatalogConfig selects the catalog store backend.
// File is used when URL is empty.
type CatalogConfig struct {
	File      string `mapstructure:"file"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// APIConfig holds HTTP server settings
type APIConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// IngestTimeout bounds one POST /ingest request
	IngestTimeout time.Duration `mapstructure:"ingest_timeout"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Session: SessionConfig{
			RequestDelay:       1 * time.Second,
			Timeout:            30 * time.Second,
			LoginTimeout:       45 * time.Second,
			RenderRetries:      1,
			SettleDelay:        500 * time.Millisecond,
			UseHeadlessBrowser: true,
			UserAgent:          DefaultUserAgent,
		},
		Run: RunConfig{
			MaxProductsPerListing: 50,
			MaxConcurrentVendors:  3,
			Timeout:               2 * time.Hour,
			PersistRetries:        1,
		},
		Images: ImageConfig{
			MaxImages:    5,
			MaxDimension: 1200,
			Quality:      85,
			MinBytes:     2048,
			Timeout:      15 * time.Second,
			Concurrency:  5,
			CacheSize:    256,
			PlaceholderMarkers: []string{
				"placeholder", "logo", "no-image", "noimage", "no_image",
				"spacer", "blank", "loading", "icon", ".svg", "data:",
			},
		},
		Catalog: CatalogConfig{
			File: "catalog.db",
		},
		API: APIConfig{
			Port:           "8080",
			AllowedOrigins: []string{"*"},
			IngestTimeout:  2 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Credentials: map[string]Credential{},
	}
}

// Validate ensures all configuration values are coherent
func (c *Config) Validate() error {
	if c.Session.Timeout <= 0 {
		return fmt.Errorf("session timeout must be positive")
	}
	if c.Session.RequestDelay < 0 {
		return fmt.Errorf("request delay cannot be negative")
	}
	if c.Session.RenderRetries < 0 {
		return fmt.Errorf("render retries cannot be negative")
	}
	if c.Session.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.Run.MaxProductsPerListing <= 0 {
		return fmt.Errorf("max products per listing must be positive")
	}
	if c.Run.MaxConcurrentVendors <= 0 {
		return fmt.Errorf("max concurrent vendors must be positive")
	}
	if c.Run.PersistRetries < 0 {
		return fmt.Errorf("persist retries cannot be negative")
	}
	if c.Images.MaxImages < 0 || c.Images.MaxImages > 5 {
		return fmt.Errorf("max images must be between 0 and 5, got %d", c.Images.MaxImages)
	}
	if c.Images.MaxDimension <= 0 {
		return fmt.Errorf("max image dimension must be positive")
	}
	if c.Images.Quality < 1 || c.Images.Quality > 100 {
		return fmt.Errorf("image quality must be between 1 and 100, got %d", c.Images.Quality)
	}
	if c.Images.Concurrency <= 0 {
		return fmt.Errorf("image concurrency must be positive")
	}
	if c.Images.Timeout <= 0 {
		return fmt.Errorf("image timeout must be positive")
	}
	if c.Catalog.URL == "" && c.Catalog.File == "" {
		return fmt.Errorf("catalog file or url is required")
	}
	if c.Catalog.URL != "" {
		parsed, err := url.Parse(c.Catalog.URL)
		if err != nil {
			return fmt.Errorf("invalid catalog url: %w", err)
		}
		if parsed.Scheme == "" {
			return fmt.Errorf("catalog url must include a scheme")
		}
	}
	return nil
}
