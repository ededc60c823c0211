package config

import (
	"strings"
)

// normalize expands paths and fills in zero values with defaults so later
// consumers never have to re-check them.
func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(valueOr(c.Paths.DataDir, defaultDataDir)); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(valueOr(c.Paths.LogDir, defaultLogDir)); err != nil {
		return err
	}

	c.OAuth.ClientID = strings.TrimSpace(c.OAuth.ClientID)
	c.OAuth.ClientSecret = strings.TrimSpace(c.OAuth.ClientSecret)
	c.OAuth.TokenURL = valueOr(strings.TrimSpace(c.OAuth.TokenURL), defaultTokenURL)

	c.Drive.APIBaseURL = strings.TrimRight(valueOr(strings.TrimSpace(c.Drive.APIBaseURL), defaultDriveAPIBaseURL), "/")
	c.Drive.UploadBaseURL = strings.TrimRight(valueOr(strings.TrimSpace(c.Drive.UploadBaseURL), defaultDriveUploadBaseURL), "/")
	if c.Drive.ListPageSize <= 0 {
		c.Drive.ListPageSize = defaultDriveListPageSize
	}
	if c.Drive.ListPageSize > MaxListPageSize {
		c.Drive.ListPageSize = MaxListPageSize
	}
	if c.Drive.RequestTimeout <= 0 {
		c.Drive.RequestTimeout = defaultDriveRequestTimeout
	}

	c.Webhook.URL = strings.TrimSpace(c.Webhook.URL)
	if c.Webhook.RequestTimeoutMinutes <= 0 {
		c.Webhook.RequestTimeoutMinutes = defaultWebhookTimeoutMinutes
	}

	if c.Watcher.TickIntervalSeconds <= 0 {
		c.Watcher.TickIntervalSeconds = defaultTickIntervalSeconds
	}
	if c.Watcher.MaxConcurrentUsers <= 0 {
		c.Watcher.MaxConcurrentUsers = defaultMaxConcurrentUsers
	}
	if c.Watcher.QuotaFloorMB <= 0 {
		c.Watcher.QuotaFloorMB = defaultQuotaFloorMB
	}

	c.Logging.Format = valueOr(strings.ToLower(strings.TrimSpace(c.Logging.Format)), defaultLogFormat)
	c.Logging.Level = valueOr(strings.ToLower(strings.TrimSpace(c.Logging.Level)), defaultLogLevel)

	return nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
