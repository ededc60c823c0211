package config

import (
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOAuth(); err != nil {
		return err
	}
	if err := c.validateDrive(); err != nil {
		return err
	}
	if err := c.validateWebhook(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOAuth() error {
	if c.OAuth.ClientID == "" || c.OAuth.ClientSecret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/lumina/config.toml"
		}
		return fmt.Errorf("oauth.client_id and oauth.client_secret are required. Edit %s (create with 'lumina config init')", defaultPath)
	}
	if _, err := url.ParseRequestURI(c.OAuth.TokenURL); err != nil {
		return fmt.Errorf("oauth.token_url is not a valid URL: %w", err)
	}
	return nil
}

func (c *Config) validateDrive() error {
	for name, value := range map[string]string{
		"drive.api_base_url":    c.Drive.APIBaseURL,
		"drive.upload_base_url": c.Drive.UploadBaseURL,
	} {
		if _, err := url.ParseRequestURI(value); err != nil {
			return fmt.Errorf("%s is not a valid URL: %w", name, err)
		}
	}
	return nil
}

func (c *Config) validateWebhook() error {
	if c.Webhook.URL == "" {
		return nil
	}
	if _, err := url.ParseRequestURI(c.Webhook.URL); err != nil {
		return fmt.Errorf("webhook.url is not a valid URL: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
