package config

import (
	"context"
	"os"
	"strings"

	"furniture-extractor/internal/types"
)

// StaticCredentials serves vendor credentials from configuration, falling back to
// FURNITURE_<VENDOR>_USERNAME / FURNITURE_<VENDOR>_PASSWORD environment variables.
type StaticCredentials struct {
	entries map[string]types.Credential
	getenv  func(string) string
}

// NewStaticCredentials creates a credential source over the configured entries
func NewStaticCredentials(entries map[string]types.Credential) *StaticCredentials {
	copied := make(map[string]types.Credential, len(entries))
	for id, cred := range entries {
		copied[strings.ToLower(id)] = cred
	}
	return &StaticCredentials{entries: copied, getenv: os.Getenv}
}

// Lookup implements types.CredentialSource
func (s *StaticCredentials) Lookup(_ context.Context, vendorID string) (types.Credential, bool, error) {
	id := strings.ToLower(vendorID)
	if cred, ok := s.entries[id]; ok && cred.Username != "" {
		return cred, true, nil
	}

	key := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(id, "-", "_"))
	username := s.getenv(key + "_USERNAME")
	if username == "" {
		return types.Credential{}, false, nil
	}
	return types.Credential{Username: username, Password: s.getenv(key + "_PASSWORD")}, true, nil
}
