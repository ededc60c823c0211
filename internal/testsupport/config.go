package testsupport

import (
	"path/filepath"
	"testing"

	"lumina/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.OAuth.ClientID = "test-client"
	cfg.OAuth.ClientSecret = "test-secret"
	cfg.Watcher.TickIntervalSeconds = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithTokenURL points the OAuth token endpoint at a test server.
func WithTokenURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.OAuth.TokenURL = url
	}
}

// WithDriveURLs points both remote storage endpoints at a test server.
func WithDriveURLs(apiURL, uploadURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Drive.APIBaseURL = apiURL
		cfg.Drive.UploadBaseURL = uploadURL
	}
}

// WithWebhookURL points the enhancement webhook at a test server.
// An empty URL disables notification entirely.
func WithWebhookURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Webhook.URL = url
	}
}
