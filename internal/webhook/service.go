package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lumina/internal/config"
	"lumina/internal/services"
)

const userAgent = "Lumina-Watcher/0.1.0"

// Service notifies the downstream enhancement consumer about a batch of
// uploaded intermediate files. A nil return means the consumer confirmed
// the batch; any error means the caller must preserve all artifacts.
type Service interface {
	Notify(ctx context.Context, fileIDs []string, accessToken string, projectID int64) error
}

// NewService builds a webhook notifier for the configured endpoint.
// When no URL is configured, a noop implementation is returned that
// confirms every batch so the pipeline can complete without a downstream.
func NewService(cfg *config.Config) Service {
	endpoint := strings.TrimSpace(cfg.Webhook.URL)
	if endpoint == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Webhook.RequestTimeoutMinutes) * time.Minute
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}

	// The downstream enhancement step can take a very long time, so the
	// client timeout is generous rather than the call being cancellable.
	return &httpService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type httpService struct {
	endpoint string
	client   *http.Client
}

type notifyPayload struct {
	Files       []string `json:"files"`
	AccessToken string   `json:"accessToken"`
	ProjectID   int64    `json:"projectId"`
	Timestamp   string   `json:"timestamp"`
}

type notifyResponse struct {
	Success bool `json:"success"`
}

func (s *httpService) Notify(ctx context.Context, fileIDs []string, accessToken string, projectID int64) error {
	payload := notifyPayload{
		Files:       fileIDs,
		AccessToken: accessToken,
		ProjectID:   projectID,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return services.Wrap(services.ErrWebhook, "webhook", "notify", "marshal payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return services.Wrap(services.ErrWebhook, "webhook", "notify", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrWebhook, "webhook", "notify", "send request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrWebhook, "webhook", "notify",
			fmt.Sprintf("status %d: %s", resp.StatusCode, bytes.TrimSpace(detail)), nil)
	}

	var decoded notifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return services.Wrap(services.ErrWebhook, "webhook", "notify", "response is not JSON", err)
	}
	if !decoded.Success {
		return services.Wrap(services.ErrWebhook, "webhook", "notify", "consumer reported success=false", nil)
	}
	return nil
}

type noopService struct{}

func (noopService) Notify(context.Context, []string, string, int64) error { return nil }
