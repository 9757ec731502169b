package types

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasonLabel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: "unknown"},
		{name: "auth", err: AuthError{Vendor: "fourhands", Err: errors.New("bad password")}, expected: "auth"},
		{name: "render timeout", err: RenderTimeout{URL: "u", Err: context.DeadlineExceeded}, expected: "render_timeout"},
		{name: "render error", err: RenderError{URL: "u", Err: errors.New("net::ERR_NAME_NOT_RESOLVED")}, expected: "render_error"},
		{name: "image", err: ImageDownloadError{URL: "u", Err: errors.New("404")}, expected: "image_download"},
		{name: "persistence", err: PersistenceError{Key: "k", Err: errors.New("locked")}, expected: "persistence"},
		{name: "wrapped insufficient", err: fmt.Errorf("normalize: %w", ErrInsufficient), expected: "insufficient"},
		{name: "unknown vendor", err: ErrUnknownVendor, expected: "unknown_vendor"},
		{name: "store unavailable", err: ErrStoreUnavailable, expected: "store_unavailable"},
		{name: "canceled", err: context.Canceled, expected: "canceled"},
		{name: "other", err: errors.New("boom"), expected: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ReasonLabel(tt.err))
		})
	}
}

func TestNewRenderFailure(t *testing.T) {
	err := NewRenderFailure("https://example.com/p", fmt.Errorf("navigate: %w", context.DeadlineExceeded))
	var timeout RenderTimeout
	assert.True(t, errors.As(err, &timeout))
	assert.Equal(t, "https://example.com/p", timeout.URL)

	err = NewRenderFailure("https://example.com/p", errors.New("page crashed"))
	var render RenderError
	assert.True(t, errors.As(err, &render))
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Images.MaxImages = 6
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Catalog.File = ""
	assert.Error(t, cfg.Validate())

	cfg.Catalog.URL = "libsql://catalog.example.turso.io"
	assert.NoError(t, cfg.Validate())
}
