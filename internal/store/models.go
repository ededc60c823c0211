package store

import "time"

// User owns the long-lived refresh token supplied at sign-in plus the
// access-token cache maintained by the token manager.
type User struct {
	ID           int64
	Email        string
	RefreshToken string
	AccessToken  string
	TokenExpiry  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WatchSettings is the per-project watch configuration. ProcessedFileIDs
// is monotonically growing; the worker only ever appends to it.
type WatchSettings struct {
	Enabled    bool
	FolderID   string
	TemplateID string
	Scale      int
}

// Project is a user's watermarking project. Only the watch-related fields
// matter to the worker; the rest belongs to the user-facing API.
type Project struct {
	ID        int64
	UserID    int64
	Name      string
	Watch     WatchSettings
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Template references an overlay image stored in the user's remote folder.
// Read-only from the worker's perspective.
type Template struct {
	ID          string
	Name        string
	DriveFileID string
}

// Watch is one enabled watch configuration joined with its owning user,
// templates, and the processed-file ledger, as fetched at the start of a tick.
type Watch struct {
	Project   *Project
	User      *User
	Templates []Template
	Processed map[string]struct{}
}

// TemplateByID resolves a template from the project's collection.
func (w *Watch) TemplateByID(id string) (Template, bool) {
	for _, tpl := range w.Templates {
		if tpl.ID == id {
			return tpl, true
		}
	}
	return Template{}, false
}

// TemplateIDs lists the ids available on this watch, for diagnostics when
// the configured template cannot be resolved.
func (w *Watch) TemplateIDs() []string {
	ids := make([]string, 0, len(w.Templates))
	for _, tpl := range w.Templates {
		ids = append(ids, tpl.ID)
	}
	return ids
}

// Stats summarizes store contents for CLI diagnostics.
type Stats struct {
	Users          int
	Projects       int
	EnabledWatches int
	LedgerEntries  int
}
