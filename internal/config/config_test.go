package config

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furniture-extractor/internal/types"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults when no file or env", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, 50, cfg.Run.MaxProductsPerListing)
		assert.Equal(t, 3, cfg.Run.MaxConcurrentVendors)
		assert.Equal(t, 5, cfg.Images.MaxImages)
		assert.Equal(t, 1200, cfg.Images.MaxDimension)
		assert.Equal(t, 30*time.Second, cfg.Session.Timeout)
		assert.Equal(t, "catalog.db", cfg.Catalog.File)
		assert.Equal(t, types.DefaultUserAgent, cfg.Session.UserAgent)
		assert.Contains(t, cfg.Images.PlaceholderMarkers, "placeholder")
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("FURNITURE_RUN_MAX_CONCURRENT_VENDORS", "7")
		t.Setenv("FURNITURE_SESSION_TIMEOUT", "12s")
		t.Setenv("FURNITURE_CATALOG_URL", "libsql://catalog.example.turso.io")

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, 7, cfg.Run.MaxConcurrentVendors)
		assert.Equal(t, 12*time.Second, cfg.Session.Timeout)
		assert.Equal(t, "libsql://catalog.example.turso.io", cfg.Catalog.URL)
	})

	t.Run("file with vendors and credentials", func(t *testing.T) {
		path := writeConfig(t, `
images:
  max_images: 3
credentials:
  fourhands:
    username: buyer@example.com
    password: secret
vendors:
  - id: test-vendor
    name: Test Vendor
    base_url: https://vendor.example.com
    domains: [vendor.example.com]
    listing_paths: [/collections/lamps]
    fields:
      name:
        - selector: h1.title
        - selector: h1
      price:
        - selector: .price
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 3, cfg.Images.MaxImages)
		require.Len(t, cfg.Vendors, 1)
		assert.Equal(t, "test-vendor", cfg.Vendors[0].ID)
		require.Len(t, cfg.Vendors[0].Fields.Name, 2)
		assert.Equal(t, "h1.title", cfg.Vendors[0].Fields.Name[0].Selector)
		assert.Equal(t, "buyer@example.com", cfg.Credentials["fourhands"].Username)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := writeConfig(t, "images:\n  max_images: 9\n")
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("vendor without base url is rejected", func(t *testing.T) {
		path := writeConfig(t, "vendors:\n  - id: broken\n    name: Broken\n")
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestStaticCredentials(t *testing.T) {
	source := NewStaticCredentials(map[string]types.Credential{
		"FourHands": {Username: "buyer", Password: "pw"},
	})
	source.getenv = func(key string) string {
		switch key {
		case "FURNITURE_BERNHARDT_USERNAME":
			return "env-user"
		case "FURNITURE_BERNHARDT_PASSWORD":
			return "env-pw"
		}
		return ""
	}

	cred, ok, err := source.Lookup(context.Background(), "fourhands")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "buyer", cred.Username)

	cred, ok, err = source.Lookup(context.Background(), "bernhardt")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, types.Credential{Username: "env-user", Password: "env-pw"}, cred)

	_, ok, err = source.Lookup(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	logger, err := NewLogger(types.LogConfig{Level: "warn", Format: "text"}, false, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger, err = NewLogger(types.LogConfig{Level: "info"}, true, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	t.Setenv("LOG_LEVEL", "error")
	logger, err = NewLogger(types.LogConfig{Level: "info", Format: "json"}, true, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, logrus.ErrorLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	_, err = NewLogger(types.LogConfig{Format: "xml"}, false, io.Discard)
	assert.Error(t, err)

	t.Setenv("LOG_LEVEL", "loud")
	_, err = NewLogger(types.LogConfig{}, false, io.Discard)
	assert.Error(t, err)
}
