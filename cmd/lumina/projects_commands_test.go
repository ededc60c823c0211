package main

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"lumina/internal/config"
	"lumina/internal/store"
)

func seedProject(t *testing.T, configPath string) int64 {
	t.Helper()

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	user, err := st.CreateUser(ctx, "cli@example.com", "refresh")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	project, err := st.CreateProject(ctx, user.ID, "CLI Project", store.WatchSettings{
		Enabled:  true,
		FolderID: "folder-1",
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return project.ID
}

func TestProjectsListAndToggle(t *testing.T) {
	path := writeTestConfig(t)
	projectID := seedProject(t, path)

	out, err := runCommand(t, "--config", path, "projects", "list")
	if err != nil {
		t.Fatalf("projects list: %v", err)
	}
	if !strings.Contains(out, "CLI Project") || !strings.Contains(out, "yes") {
		t.Errorf("list output = %q", out)
	}

	if _, err := runCommand(t, "--config", path, "projects", "disable", strconv.FormatInt(projectID, 10)); err != nil {
		t.Fatalf("projects disable: %v", err)
	}
	out, err = runCommand(t, "--config", path, "projects", "list")
	if err != nil {
		t.Fatalf("projects list: %v", err)
	}
	if !strings.Contains(out, "no") {
		t.Errorf("expected watching disabled, got %q", out)
	}

	if _, err := runCommand(t, "--config", path, "projects", "enable", "999"); err == nil {
		t.Error("enabling unknown project should fail")
	}
}

func TestProjectsListEmpty(t *testing.T) {
	path := writeTestConfig(t)

	out, err := runCommand(t, "--config", path, "projects", "list")
	if err != nil {
		t.Fatalf("projects list: %v", err)
	}
	if !strings.Contains(out, "No projects found") {
		t.Errorf("output = %q", out)
	}
}
