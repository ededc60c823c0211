package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lumina/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[oauth]
client_id = "id"
client_secret = "secret"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatalf("expected config at %s to exist", resolved)
	}
	if cfg.Drive.ListPageSize != 50 {
		t.Errorf("ListPageSize = %d, want 50", cfg.Drive.ListPageSize)
	}
	if cfg.Watcher.TickIntervalSeconds != 60 {
		t.Errorf("TickIntervalSeconds = %d, want 60", cfg.Watcher.TickIntervalSeconds)
	}
	if cfg.Webhook.RequestTimeoutMinutes != 30 {
		t.Errorf("RequestTimeoutMinutes = %d, want 30", cfg.Webhook.RequestTimeoutMinutes)
	}
	if cfg.OAuth.TokenURL == "" {
		t.Error("expected default token URL")
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Errorf("DataDir %q not absolute", cfg.Paths.DataDir)
	}
}

func TestLoadRequiresOAuthCredentials(t *testing.T) {
	path := writeConfig(t, `
[watcher]
tick_interval_seconds = 30
`)

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for missing oauth credentials")
	}
	if !strings.Contains(err.Error(), "oauth.client_id") {
		t.Errorf("error %q does not mention oauth.client_id", err)
	}
}

func TestLoadClampsPageSize(t *testing.T) {
	path := writeConfig(t, `
[oauth]
client_id = "id"
client_secret = "secret"

[drive]
list_page_size = 500
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Drive.ListPageSize != config.MaxListPageSize {
		t.Errorf("ListPageSize = %d, want %d", cfg.Drive.ListPageSize, config.MaxListPageSize)
	}
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	path := writeConfig(t, `
[oauth]
client_id = "id"
client_secret = "secret"

[logging]
format = "xml"
`)

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[watcher]") {
		t.Error("sample config missing [watcher] section")
	}
}
