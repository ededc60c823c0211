package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lumina/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransient, "drive", "download", "file f1", base)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
	for _, want := range []string{"drive", "download", "file f1", "boom"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected nil marker to default to ErrTransient, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected generic detail, got %q", err)
	}
}

func TestContextAnnotations(t *testing.T) {
	ctx := context.Background()
	if _, ok := services.UserIDFromContext(ctx); ok {
		t.Fatal("expected no user id on fresh context")
	}

	ctx = services.WithUserID(ctx, 7)
	ctx = services.WithProjectID(ctx, 11)
	ctx = services.WithRequestID(ctx, "req-1")

	if id, ok := services.UserIDFromContext(ctx); !ok || id != 7 {
		t.Errorf("user id = %d, %v; want 7, true", id, ok)
	}
	if id, ok := services.ProjectIDFromContext(ctx); !ok || id != 11 {
		t.Errorf("project id = %d, %v; want 11, true", id, ok)
	}
	if id, ok := services.RequestIDFromContext(ctx); !ok || id != "req-1" {
		t.Errorf("request id = %q, %v; want req-1, true", id, ok)
	}
}
