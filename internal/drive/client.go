package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"lumina/internal/config"
	"lumina/internal/logging"
	"lumina/internal/services"
)

// File is a remote storage object as returned by a folder listing.
type File struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// Quota reports remote storage usage. Limit may be zero for unlimited plans.
type Quota struct {
	UsageBytes int64
	LimitBytes int64
}

// FreeBytes returns remaining capacity, or a negative value when over quota.
func (q Quota) FreeBytes() int64 {
	return q.LimitBytes - q.UsageBytes
}

// Client talks to the remote storage REST API. All operations take the
// bearer token explicitly because tokens are per-user, not per-client.
type Client struct {
	apiBaseURL    string
	uploadBaseURL string
	pageSize      int
	httpClient    *http.Client
	logger        *slog.Logger
}

// NewClient constructs a remote storage client from configuration.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	return &Client{
		apiBaseURL:    cfg.Drive.APIBaseURL,
		uploadBaseURL: cfg.Drive.UploadBaseURL,
		pageSize:      cfg.Drive.ListPageSize,
		httpClient:    &http.Client{Timeout: time.Duration(cfg.Drive.RequestTimeout) * time.Second},
		logger:        logging.NewComponentLogger(logger, "drive"),
	}
}

// ListImages returns image files in a folder, newest first. Listing is
// fail-soft: any error yields an empty slice so one bad folder cannot
// abort a whole tick.
func (c *Client) ListImages(ctx context.Context, token, folderID string) []File {
	query := fmt.Sprintf("'%s' in parents and trashed = false and mimeType contains 'image/'", folderID)
	params := url.Values{}
	params.Set("q", query)
	params.Set("fields", "files(id,name,mimeType)")
	params.Set("orderBy", "createdTime desc")
	params.Set("pageSize", strconv.Itoa(c.pageSize))

	endpoint := c.apiBaseURL + "/files?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Warn("build list request failed", logging.Error(err), logging.String(logging.FieldFolderID, folderID))
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("folder listing failed", logging.Error(err), logging.String(logging.FieldFolderID, folderID))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("folder listing returned error status",
			logging.Int("status", resp.StatusCode),
			logging.String(logging.FieldFolderID, folderID),
		)
		return nil
	}

	var payload struct {
		Files []File `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("decode folder listing failed", logging.Error(err), logging.String(logging.FieldFolderID, folderID))
		return nil
	}
	return payload.Files
}

// Download fetches a file's content. Failure is fatal for the single file,
// not for the run.
func (c *Client) Download(ctx context.Context, token, fileID string) ([]byte, error) {
	endpoint := c.apiBaseURL + "/files/" + url.PathEscape(fileID) + "?alt=media"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "drive", "download", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "drive", "download", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, services.Wrap(services.ErrTransient, "drive", "download",
			fmt.Sprintf("%s: status %d", fileID, resp.StatusCode), nil)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "drive", "download", fileID, err)
	}
	return data, nil
}

// Upload creates a new remote object via a multipart/related request
// carrying JSON metadata and the media bytes.
func (c *Client) Upload(ctx context.Context, token string, data []byte, name, folderID, mimeType string) (*File, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	metadata := map[string]any{
		"name":    name,
		"parents": []string{folderID},
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "drive", "upload", "marshal metadata", err)
	}

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "drive", "upload", "create metadata part", err)
	}
	if _, err := metaPart.Write(metadataJSON); err != nil {
		return nil, services.Wrap(services.ErrTransient, "drive", "upload", "write metadata part", err)
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", mimeType)
	mediaPart, err := writer.CreatePart(mediaHeader)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "drive", "upload", "create media part", err)
	}
	if _, err := mediaPart.Write(data); err != nil {
		return nil, services.Wrap(services.ErrTransient, "drive", "upload", "write media part", err)
	}
	if err := writer.Close(); err != nil {
		return nil, services.Wrap(services.ErrTransient, "drive", "upload", "finalize multipart body", err)
	}

	endpoint := c.uploadBaseURL + "/files?uploadType=multipart"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "drive", "upload", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "drive", "upload", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, services.Wrap(services.ErrTransient, "drive", "upload",
			fmt.Sprintf("%s: status %d: %s", name, resp.StatusCode, bytes.TrimSpace(detail)), nil)
	}

	var file File
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return nil, services.Wrap(services.ErrTransient, "drive", "upload", "decode response", err)
	}
	return &file, nil
}

// Delete removes a remote file. Cleanup is best-effort: failures are logged
// and never propagated, so they cannot block marking a run as processed.
func (c *Client) Delete(ctx context.Context, token, fileID string) {
	endpoint := c.apiBaseURL + "/files/" + url.PathEscape(fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		c.logger.Warn("build delete request failed", logging.Error(err), logging.String(logging.FieldFileID, fileID))
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("delete failed", logging.Error(err), logging.String(logging.FieldFileID, fileID))
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("delete returned error status",
			logging.Int("status", resp.StatusCode),
			logging.String(logging.FieldFileID, fileID),
		)
		return
	}
	c.logger.Debug("deleted intermediate file", logging.String(logging.FieldFileID, fileID))
}

// GetQuota reports storage usage for the token's account. Any error yields
// nil, which callers treat as "unknown, proceed".
func (c *Client) GetQuota(ctx context.Context, token string) *Quota {
	endpoint := c.apiBaseURL + "/about?fields=storageQuota"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Warn("build quota request failed", logging.Error(err))
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("quota check failed", logging.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("quota check returned error status", logging.Int("status", resp.StatusCode))
		return nil
	}

	// The API reports quota numbers as JSON strings.
	var payload struct {
		StorageQuota struct {
			Usage string `json:"usage"`
			Limit string `json:"limit"`
		} `json:"storageQuota"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("decode quota response failed", logging.Error(err))
		return nil
	}

	usage, err := strconv.ParseInt(payload.StorageQuota.Usage, 10, 64)
	if err != nil {
		return nil
	}
	limit, err := strconv.ParseInt(payload.StorageQuota.Limit, 10, 64)
	if err != nil {
		// Accounts without an enforced limit omit or blank the field.
		return nil
	}
	return &Quota{UsageBytes: usage, LimitBytes: limit}
}
