package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"furniture-extractor/internal/types"
)

// EnvPrefix is the prefix for environment overrides, e.g. FURNITURE_RUN_MAX_CONCURRENT_VENDORS
const EnvPrefix = "FURNITURE"

// Load loads configuration from an optional YAML file, environment variables and defaults.
// When path is empty the file is looked up as config.yaml in the usual locations.
func Load(path string) (*types.Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/furniture-extractor/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// no config file; env vars and defaults only
	}

	cfg := types.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.Credentials == nil {
		cfg.Credentials = map[string]types.Credential{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	for i, profile := range cfg.Vendors {
		if err := validateProfile(profile); err != nil {
			return nil, fmt.Errorf("invalid vendor %d: %w", i, err)
		}
	}

	return cfg, nil
}

// setDefaults mirrors types.DefaultConfig so every key is known to viper and can be overridden from the environment
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()

	v.SetDefault("session.request_delay", d.Session.RequestDelay)
	v.SetDefault("session.timeout", d.Session.Timeout)
	v.SetDefault("session.login_timeout", d.Session.LoginTimeout)
	v.SetDefault("session.render_retries", d.Session.RenderRetries)
	v.SetDefault("session.settle_delay", d.Session.SettleDelay)
	v.SetDefault("session.use_headless_browser", d.Session.UseHeadlessBrowser)
	v.SetDefault("session.no_sandbox", d.Session.NoSandbox)
	v.SetDefault("session.user_agent", d.Session.UserAgent)

	v.SetDefault("run.max_products_per_listing", d.Run.MaxProductsPerListing)
	v.SetDefault("run.max_concurrent_vendors", d.Run.MaxConcurrentVendors)
	v.SetDefault("run.timeout", d.Run.Timeout)
	v.SetDefault("run.persist_retries", d.Run.PersistRetries)

	v.SetDefault("images.max_images", d.Images.MaxImages)
	v.SetDefault("images.max_dimension", d.Images.MaxDimension)
	v.SetDefault("images.quality", d.Images.Quality)
	v.SetDefault("images.min_bytes", d.Images.MinBytes)
	v.SetDefault("images.timeout", d.Images.Timeout)
	v.SetDefault("images.concurrency", d.Images.Concurrency)
	v.SetDefault("images.cache_size", d.Images.CacheSize)
	v.SetDefault("images.placeholder_markers", d.Images.PlaceholderMarkers)

	v.SetDefault("catalog.file", d.Catalog.File)
	v.SetDefault("catalog.url", d.Catalog.URL)
	v.SetDefault("catalog.auth_token", d.Catalog.AuthToken)

	v.SetDefault("api.port", d.API.Port)
	v.SetDefault("api.allowed_origins", d.API.AllowedOrigins)
	v.SetDefault("api.ingest_timeout", d.API.IngestTimeout)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

func validateProfile(p types.VendorProfile) error {
	if p.ID == "" {
		return fmt.Errorf("vendor id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("vendor %s: name is required", p.ID)
	}
	if !strings.HasPrefix(p.BaseURL, "http://") && !strings.HasPrefix(p.BaseURL, "https://") {
		return fmt.Errorf("vendor %s: base url must be absolute, got %q", p.ID, p.BaseURL)
	}
	return nil
}
