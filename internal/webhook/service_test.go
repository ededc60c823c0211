package webhook_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lumina/internal/services"
	"lumina/internal/testsupport"
	"lumina/internal/webhook"
)

func TestNotifyPayloadShape(t *testing.T) {
	var got struct {
		Files       []string `json:"files"`
		AccessToken string   `json:"accessToken"`
		ProjectID   int64    `json:"projectId"`
		Timestamp   string   `json:"timestamp"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithWebhookURL(server.URL))
	svc := webhook.NewService(cfg)

	err := svc.Notify(context.Background(), []string{"up-1", "up-2"}, "tok", 7)
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(got.Files) != 2 || got.Files[0] != "up-1" || got.Files[1] != "up-2" {
		t.Errorf("files = %v", got.Files)
	}
	if got.AccessToken != "tok" {
		t.Errorf("accessToken = %q", got.AccessToken)
	}
	if got.ProjectID != 7 {
		t.Errorf("projectId = %d", got.ProjectID)
	}
	if _, err := time.Parse(time.RFC3339, got.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", got.Timestamp, err)
	}
}

func TestNotifySuccessFalseIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithWebhookURL(server.URL))
	err := webhook.NewService(cfg).Notify(context.Background(), []string{"up-1"}, "tok", 1)
	if !errors.Is(err, services.ErrWebhook) {
		t.Fatalf("err = %v, want ErrWebhook", err)
	}
}

func TestNotifyErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithWebhookURL(server.URL))
	err := webhook.NewService(cfg).Notify(context.Background(), []string{"up-1"}, "tok", 1)
	if !errors.Is(err, services.ErrWebhook) {
		t.Fatalf("err = %v, want ErrWebhook", err)
	}
}

func TestNotifyNonJSONBodyIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithWebhookURL(server.URL))
	err := webhook.NewService(cfg).Notify(context.Background(), []string{"up-1"}, "tok", 1)
	if !errors.Is(err, services.ErrWebhook) {
		t.Fatalf("err = %v, want ErrWebhook", err)
	}
}

func TestNotifyUnreachableEndpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWebhookURL("http://127.0.0.1:1"))
	err := webhook.NewService(cfg).Notify(context.Background(), []string{"up-1"}, "tok", 1)
	if !errors.Is(err, services.ErrWebhook) {
		t.Fatalf("err = %v, want ErrWebhook", err)
	}
}

func TestNoopServiceWhenURLEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWebhookURL(""))
	if err := webhook.NewService(cfg).Notify(context.Background(), nil, "", 0); err != nil {
		t.Fatalf("noop Notify: %v", err)
	}
}
