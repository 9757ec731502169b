package utils

import (
	"context"

	"furniture-extractor/internal/types"
)

// NewSessionFactory returns a factory that opens a headless-browser session, or a
// static HTTP session when the browser is disabled in configuration
func NewSessionFactory(config *types.Config, logger types.Logger) types.SessionFactory {
	return func(ctx context.Context, profile types.VendorProfile) (types.Session, error) {
		if config.Session.UseHeadlessBrowser {
			browser, err := NewBrowserClient(ctx, config, profile.ID, logger)
			if err != nil {
				return nil, err
			}
			return browser, nil
		}

		client, err := NewHTTPClient(config, profile.ID, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
