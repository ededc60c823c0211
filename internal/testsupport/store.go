package testsupport

import (
	"context"
	"testing"

	"lumina/internal/config"
	"lumina/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedWatch creates a user and an enabled watch project with one template,
// returning both records.
func SeedWatch(t testing.TB, st *store.Store, folderID, templateID, templateFileID string) (*store.User, *store.Project) {
	t.Helper()

	ctx := context.Background()
	user, err := st.CreateUser(ctx, "watch@example.com", "refresh-token")
	if err != nil {
		t.Fatalf("store.CreateUser: %v", err)
	}
	project, err := st.CreateProject(ctx, user.ID, "Watch Project", store.WatchSettings{
		Enabled:    true,
		FolderID:   folderID,
		TemplateID: templateID,
	})
	if err != nil {
		t.Fatalf("store.CreateProject: %v", err)
	}
	if templateID != "" {
		if err := st.UpsertTemplate(ctx, project.ID, store.Template{
			ID:          templateID,
			Name:        "Test Template",
			DriveFileID: templateFileID,
		}); err != nil {
			t.Fatalf("store.UpsertTemplate: %v", err)
		}
	}
	return user, project
}
