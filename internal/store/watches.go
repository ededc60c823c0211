package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// EnabledWatches returns every watch configuration with watching enabled,
// joined with the owning user, the project's template collection, and the
// processed-file ledger. This is the worker's read at the start of a tick.
func (s *Store) EnabledWatches(ctx context.Context) ([]*Watch, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT p.id, p.user_id, p.name, p.watch_enabled, p.watch_folder_id,
               p.watch_template_id, p.watch_scale, p.created_at, p.updated_at,
               u.id, u.email, u.refresh_token, u.access_token, u.token_expiry,
               u.created_at, u.updated_at
        FROM projects p
        JOIN users u ON u.id = p.user_id
        WHERE p.watch_enabled = 1
        ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("query enabled watches: %w", err)
	}
	defer rows.Close()

	var watches []*Watch
	for rows.Next() {
		watch, err := scanWatch(rows)
		if err != nil {
			return nil, err
		}
		watches = append(watches, watch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, watch := range watches {
		if err := s.loadTemplates(ctx, watch); err != nil {
			return nil, err
		}
		if err := s.loadProcessed(ctx, watch); err != nil {
			return nil, err
		}
	}
	return watches, nil
}

// UpdateUserToken persists a refreshed access token and expiry for a user.
// A non-empty refreshToken also rotates the stored refresh token.
func (s *Store) UpdateUserToken(ctx context.Context, userID int64, accessToken string, expiry time.Time, refreshToken string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	var err error
	if refreshToken != "" {
		_, err = s.db.ExecContext(ctx, `
            UPDATE users SET access_token = ?, token_expiry = ?, refresh_token = ?, updated_at = ?
            WHERE id = ?`,
			accessToken, expiry.UTC().Format(time.RFC3339Nano), refreshToken, now, userID)
	} else {
		_, err = s.db.ExecContext(ctx, `
            UPDATE users SET access_token = ?, token_expiry = ?, updated_at = ?
            WHERE id = ?`,
			accessToken, expiry.UTC().Format(time.RFC3339Nano), now, userID)
	}
	if err != nil {
		return fmt.Errorf("update user token: %w", err)
	}
	return nil
}

// AppendProcessedFiles appends source file ids to a project's ledger.
// Inserts are idempotent so replaying a batch never produces duplicates.
func (s *Store) AppendProcessedFiles(ctx context.Context, projectID int64, fileIDs []string) error {
	if len(fileIDs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, fileID := range fileIDs {
		if fileID == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
            INSERT OR IGNORE INTO processed_files (project_id, file_id, processed_at)
            VALUES (?, ?, ?)`, projectID, fileID, now); err != nil {
			return fmt.Errorf("append processed file %s: %w", fileID, err)
		}
	}
	return tx.Commit()
}

// GetUser fetches a user by identifier.
func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, email, refresh_token, access_token, token_expiry, created_at, updated_at
        FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// CreateUser inserts a user record. The user-facing API normally owns this
// write; the worker repo carries it for seeding and tests.
func (s *Store) CreateUser(ctx context.Context, email, refreshToken string) (*User, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO users (email, refresh_token, created_at, updated_at)
        VALUES (?, ?, ?, ?)`, email, nullableString(refreshToken), now, now)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetUser(ctx, id)
}

// CreateProject inserts a project with its watch settings.
func (s *Store) CreateProject(ctx context.Context, userID int64, name string, watch WatchSettings) (*Project, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if watch.Scale == 0 {
		watch.Scale = 2
	}
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO projects (user_id, name, watch_enabled, watch_folder_id, watch_template_id, watch_scale, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, name, boolToInt(watch.Enabled), nullableString(watch.FolderID),
		nullableString(watch.TemplateID), watch.Scale, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetProject(ctx, id)
}

// GetProject fetches a project by identifier.
func (s *Store) GetProject(ctx context.Context, id int64) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, user_id, name, watch_enabled, watch_folder_id, watch_template_id, watch_scale, created_at, updated_at
        FROM projects WHERE id = ?`, id)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// ListProjects returns all projects ordered by id.
func (s *Store) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, name, watch_enabled, watch_folder_id, watch_template_id, watch_scale, created_at, updated_at
        FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// SetWatchEnabled toggles watching for a project.
func (s *Store) SetWatchEnabled(ctx context.Context, projectID int64, enabled bool) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
        UPDATE projects SET watch_enabled = ?, updated_at = ? WHERE id = ?`,
		boolToInt(enabled), time.Now().UTC().Format(time.RFC3339Nano), projectID)
	if err != nil {
		return false, fmt.Errorf("set watch enabled: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// UpsertTemplate adds or replaces a template in a project's collection.
func (s *Store) UpsertTemplate(ctx context.Context, projectID int64, tpl Template) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO templates (project_id, id, name, drive_file_id)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (project_id, id) DO UPDATE SET name = excluded.name, drive_file_id = excluded.drive_file_id`,
		projectID, tpl.ID, tpl.Name, nullableString(tpl.DriveFileID))
	if err != nil {
		return fmt.Errorf("upsert template: %w", err)
	}
	return nil
}

// LedgerSize returns the number of processed files recorded for a project.
func (s *Store) LedgerSize(ctx context.Context, projectID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM processed_files WHERE project_id = ?`, projectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count ledger: %w", err)
	}
	return count, nil
}

// CollectStats aggregates store contents for CLI diagnostics.
func (s *Store) CollectStats(ctx context.Context) (Stats, error) {
	var stats Stats
	queries := []struct {
		sql  string
		dest *int
	}{
		{`SELECT COUNT(1) FROM users`, &stats.Users},
		{`SELECT COUNT(1) FROM projects`, &stats.Projects},
		{`SELECT COUNT(1) FROM projects WHERE watch_enabled = 1`, &stats.EnabledWatches},
		{`SELECT COUNT(1) FROM processed_files`, &stats.LedgerEntries},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.sql).Scan(q.dest); err != nil {
			return Stats{}, fmt.Errorf("collect stats: %w", err)
		}
	}
	return stats, nil
}

func (s *Store) loadTemplates(ctx context.Context, watch *Watch) error {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, name, drive_file_id FROM templates WHERE project_id = ? ORDER BY id`,
		watch.Project.ID)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tpl         Template
			driveFileID sql.NullString
		)
		if err := rows.Scan(&tpl.ID, &tpl.Name, &driveFileID); err != nil {
			return fmt.Errorf("scan template: %w", err)
		}
		tpl.DriveFileID = driveFileID.String
		watch.Templates = append(watch.Templates, tpl)
	}
	return rows.Err()
}

func (s *Store) loadProcessed(ctx context.Context, watch *Watch) error {
	rows, err := s.db.QueryContext(ctx, `
        SELECT file_id FROM processed_files WHERE project_id = ?`, watch.Project.ID)
	if err != nil {
		return fmt.Errorf("load processed files: %w", err)
	}
	defer rows.Close()

	watch.Processed = make(map[string]struct{})
	for rows.Next() {
		var fileID string
		if err := rows.Scan(&fileID); err != nil {
			return fmt.Errorf("scan processed file: %w", err)
		}
		watch.Processed[fileID] = struct{}{}
	}
	return rows.Err()
}

func scanWatch(scanner interface{ Scan(dest ...any) error }) (*Watch, error) {
	var (
		project                      Project
		user                         User
		folderID, templateID         sql.NullString
		watchEnabled                 int64
		pCreatedRaw, pUpdatedRaw     string
		refreshToken, accessToken    sql.NullString
		tokenExpiryRaw               sql.NullString
		uCreatedRaw, uUpdatedRaw     string
	)

	if err := scanner.Scan(
		&project.ID, &project.UserID, &project.Name, &watchEnabled, &folderID,
		&templateID, &project.Watch.Scale, &pCreatedRaw, &pUpdatedRaw,
		&user.ID, &user.Email, &refreshToken, &accessToken, &tokenExpiryRaw,
		&uCreatedRaw, &uUpdatedRaw,
	); err != nil {
		return nil, fmt.Errorf("scan watch: %w", err)
	}

	project.Watch.Enabled = watchEnabled != 0
	project.Watch.FolderID = folderID.String
	project.Watch.TemplateID = templateID.String
	user.RefreshToken = refreshToken.String
	user.AccessToken = accessToken.String
	if tokenExpiryRaw.Valid {
		if expiry, err := parseTimeString(tokenExpiryRaw.String); err == nil {
			user.TokenExpiry = &expiry
		}
	}
	if created, err := parseTimeString(pCreatedRaw); err == nil {
		project.CreatedAt = created
	}
	if updated, err := parseTimeString(pUpdatedRaw); err == nil {
		project.UpdatedAt = updated
	}
	if created, err := parseTimeString(uCreatedRaw); err == nil {
		user.CreatedAt = created
	}
	if updated, err := parseTimeString(uUpdatedRaw); err == nil {
		user.UpdatedAt = updated
	}

	return &Watch{Project: &project, User: &user}, nil
}

func scanUser(scanner interface{ Scan(dest ...any) error }) (*User, error) {
	var (
		user                      User
		refreshToken, accessToken sql.NullString
		tokenExpiryRaw            sql.NullString
		createdRaw, updatedRaw    string
	)
	if err := scanner.Scan(&user.ID, &user.Email, &refreshToken, &accessToken,
		&tokenExpiryRaw, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	user.RefreshToken = refreshToken.String
	user.AccessToken = accessToken.String
	if tokenExpiryRaw.Valid {
		if expiry, err := parseTimeString(tokenExpiryRaw.String); err == nil {
			user.TokenExpiry = &expiry
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		user.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		user.UpdatedAt = updated
	}
	return &user, nil
}

func scanProject(scanner interface{ Scan(dest ...any) error }) (*Project, error) {
	var (
		project                Project
		watchEnabled           int64
		folderID, templateID   sql.NullString
		createdRaw, updatedRaw string
	)
	if err := scanner.Scan(&project.ID, &project.UserID, &project.Name, &watchEnabled,
		&folderID, &templateID, &project.Watch.Scale, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	project.Watch.Enabled = watchEnabled != 0
	project.Watch.FolderID = folderID.String
	project.Watch.TemplateID = templateID.String
	if created, err := parseTimeString(createdRaw); err == nil {
		project.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		project.UpdatedAt = updated
	}
	return &project, nil
}
