package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lumina/internal/config"
	"lumina/internal/logging"
	"lumina/internal/store"
)

// refreshWindow is how much remaining lifetime a cached token must have to
// be reused without hitting the token endpoint.
const refreshWindow = 30 * time.Minute

// expiryMargin is subtracted from the reported expires_in so the stored
// expiry is always safely earlier than the real one.
const expiryMargin = time.Minute

// defaultExpiresIn matches the token endpoint's usual lifetime, used when
// the response omits expires_in.
const defaultExpiresIn = 3599

var (
	// ErrNoRefreshToken indicates a user without a stored refresh token;
	// no network call is made.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrRefreshFailed indicates the token endpoint rejected or failed the
	// refresh; the caller should skip this user for the current tick.
	ErrRefreshFailed = errors.New("token refresh failed")
)

// TokenStore is the persistence surface the manager needs.
type TokenStore interface {
	UpdateUserToken(ctx context.Context, userID int64, accessToken string, expiry time.Time, refreshToken string) error
}

// Manager refreshes and caches per-user access tokens.
type Manager struct {
	cfg    *config.Config
	store  TokenStore
	client *http.Client
	logger *slog.Logger

	now func() time.Time
}

// NewManager constructs a token manager.
func NewManager(cfg *config.Config, tokenStore TokenStore, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		store:  tokenStore,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logging.NewComponentLogger(logger, "auth"),
		now:    time.Now,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	ErrorCode    string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

// EnsureValidToken returns a bearer token for the user, refreshing and
// persisting it when the cached one is missing or within the refresh window
// of expiring. Exactly one persistence write happens per successful refresh.
func (m *Manager) EnsureValidToken(ctx context.Context, user *store.User) (string, error) {
	if user == nil || strings.TrimSpace(user.RefreshToken) == "" {
		return "", fmt.Errorf("%w: user has no stored credential", ErrNoRefreshToken)
	}

	now := m.now()
	if user.AccessToken != "" && user.TokenExpiry != nil && user.TokenExpiry.Sub(now) >= refreshWindow {
		return user.AccessToken, nil
	}

	m.logger.Debug("refreshing access token", logging.Int64(logging.FieldUserID, user.ID))

	resp, err := m.refresh(ctx, user.RefreshToken)
	if err != nil {
		return "", err
	}

	expiresIn := resp.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}
	expiry := now.Add(time.Duration(expiresIn)*time.Second - expiryMargin)

	if err := m.store.UpdateUserToken(ctx, user.ID, resp.AccessToken, expiry, resp.RefreshToken); err != nil {
		return "", fmt.Errorf("%w: persist refreshed token: %w", ErrRefreshFailed, err)
	}

	user.AccessToken = resp.AccessToken
	user.TokenExpiry = &expiry
	if resp.RefreshToken != "" {
		user.RefreshToken = resp.RefreshToken
	}

	m.logger.Info("access token refreshed",
		logging.Int64(logging.FieldUserID, user.ID),
		logging.String("token_expiry", expiry.UTC().Format(time.RFC3339)),
	)
	return resp.AccessToken, nil
}

func (m *Manager) refresh(ctx context.Context, refreshToken string) (*tokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", m.cfg.OAuth.ClientID)
	form.Set("client_secret", m.cfg.OAuth.ClientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.OAuth.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrRefreshFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrRefreshFailed, err)
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrRefreshFailed, err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		detail := resp.ErrorDesc
		if detail == "" {
			detail = resp.ErrorCode
		}
		if detail == "" {
			detail = httpResp.Status
		}
		return nil, fmt.Errorf("%w: %s", ErrRefreshFailed, detail)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: response missing access_token", ErrRefreshFailed)
	}
	return &resp, nil
}
