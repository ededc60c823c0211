package watcher

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lumina/internal/compose"
	"lumina/internal/drive"
	"lumina/internal/logging"
	"lumina/internal/services"
	"lumina/internal/store"
)

// processedSuffix appears in every uploaded intermediate's name. Files whose
// names contain it are never treated as new work, so the worker cannot chew
// on its own output.
const processedSuffix = "_processed"

// RunTick processes every enabled watch once. Watches fan out across a
// bounded worker group; a failure inside one watch never aborts the others.
func (m *Manager) RunTick(ctx context.Context) {
	watches, err := m.store.EnabledWatches(ctx)
	if err != nil {
		m.logger.Error("load enabled watches failed", logging.Error(err))
		return
	}
	if len(watches) == 0 {
		return
	}

	m.logger.Debug("tick started", logging.Int("watches", len(watches)))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(m.maxConcurrent)
	for _, watch := range watches {
		watch := watch
		group.Go(func() error {
			m.processWatch(groupCtx, watch)
			return nil
		})
	}
	_ = group.Wait()
}

func (m *Manager) processWatch(ctx context.Context, watch *store.Watch) {
	if !m.locks.TryAcquire(watch.User.ID) {
		m.logger.Debug("user busy, skipping",
			logging.Int64(logging.FieldUserID, watch.User.ID),
			logging.Int64(logging.FieldProjectID, watch.Project.ID),
		)
		return
	}
	defer m.locks.Release(watch.User.ID)

	requestID := uuid.NewString()
	ctx = services.WithUserID(ctx, watch.User.ID)
	ctx = services.WithProjectID(ctx, watch.Project.ID)
	ctx = services.WithRequestID(ctx, requestID)

	logger := m.logger.With(
		logging.Int64(logging.FieldUserID, watch.User.ID),
		logging.Int64(logging.FieldProjectID, watch.Project.ID),
		logging.String(logging.FieldRequestID, requestID),
	)

	token, err := m.tokens.EnsureValidToken(ctx, watch.User)
	if err != nil {
		logger.Warn("token refresh failed, skipping user", logging.Error(err))
		return
	}

	if quota := m.storage.GetQuota(ctx, token); quota != nil {
		floor := int64(m.cfg.Watcher.QuotaFloorMB) * 1024 * 1024
		if quota.FreeBytes() < floor {
			logger.Warn("storage quota below floor, skipping user",
				logging.Int64("free_bytes", quota.FreeBytes()),
				logging.Int64("floor_bytes", floor),
			)
			return
		}
	}

	folderID := watch.Project.Watch.FolderID
	if folderID == "" {
		logger.Debug("watch has no folder configured")
		return
	}

	files := m.storage.ListImages(ctx, token, folderID)
	pending := pendingFiles(files, watch.Processed)
	if len(pending) == 0 {
		return
	}
	logger.Info("discovered new files",
		logging.Int("listed", len(files)),
		logging.Int("pending", len(pending)),
		logging.String(logging.FieldFolderID, folderID),
	)

	template, ok := watch.TemplateByID(watch.Project.Watch.TemplateID)
	if !ok || template.DriveFileID == "" {
		logger.Warn("configured template not found, skipping batch",
			logging.String(logging.FieldTemplateID, watch.Project.Watch.TemplateID),
			logging.Any("available_templates", watch.TemplateIDs()),
		)
		return
	}
	templateData, err := m.storage.Download(ctx, token, template.DriveFileID)
	if err != nil {
		logger.Warn("template download failed, skipping batch",
			logging.String(logging.FieldTemplateID, template.ID),
			logging.Error(err),
		)
		return
	}

	var uploadedIDs, sourceIDs []string
	for _, file := range pending {
		fileLogger := logger.With(
			logging.String(logging.FieldFileID, file.ID),
			logging.String(logging.FieldFileName, file.Name),
		)

		data, err := m.storage.Download(ctx, token, file.ID)
		if err != nil {
			fileLogger.Warn("download failed, skipping file", logging.Error(err))
			continue
		}
		output, err := compose.Composite(data, templateData)
		if err != nil {
			fileLogger.Warn("composite failed, skipping file", logging.Error(err))
			continue
		}
		name := processedName(file.Name)
		uploaded, err := m.storage.Upload(ctx, token, output, name, folderID, compose.OutputMimeType)
		if err != nil {
			fileLogger.Warn("upload failed, skipping file", logging.Error(err))
			continue
		}
		fileLogger.Info("composited file uploaded", logging.String("uploaded_id", uploaded.ID))
		uploadedIDs = append(uploadedIDs, uploaded.ID)
		sourceIDs = append(sourceIDs, file.ID)
	}
	if len(uploadedIDs) == 0 {
		return
	}

	if err := m.notifier.Notify(ctx, uploadedIDs, token, watch.Project.ID); err != nil {
		// Intermediates stay in place and the ledger is untouched, so the
		// next tick rediscovers and replays the whole batch.
		logger.Warn("webhook notification failed, preserving batch",
			logging.Int("uploaded", len(uploadedIDs)),
			logging.Error(err),
		)
		return
	}

	for _, id := range uploadedIDs {
		m.storage.Delete(ctx, token, id)
	}
	if err := m.store.AppendProcessedFiles(ctx, watch.Project.ID, sourceIDs); err != nil {
		logger.Error("ledger append failed, batch will replay", logging.Error(err))
		return
	}

	logger.Info("batch completed", logging.Int("processed", len(sourceIDs)))
}

// pendingFiles keeps listed files that are neither in the ledger nor
// produced by an earlier run.
func pendingFiles(files []drive.File, processed map[string]struct{}) []drive.File {
	var pending []drive.File
	for _, file := range files {
		if _, done := processed[file.ID]; done {
			continue
		}
		if strings.Contains(file.Name, processedSuffix) {
			continue
		}
		pending = append(pending, file)
	}
	return pending
}

// processedName derives the upload name from a source name: the stem plus
// the processed suffix, always with a .png extension.
func processedName(sourceName string) string {
	stem := strings.TrimSuffix(sourceName, filepath.Ext(sourceName))
	return stem + processedSuffix + ".png"
}
