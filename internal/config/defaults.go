package config

const (
	defaultDataDir               = "~/.local/share/lumina"
	defaultLogDir                = "~/.local/share/lumina/logs"
	defaultTokenURL              = "https://oauth2.googleapis.com/token"
	defaultDriveAPIBaseURL       = "https://www.googleapis.com/drive/v3"
	defaultDriveUploadBaseURL    = "https://www.googleapis.com/upload/drive/v3"
	defaultDriveListPageSize     = 50
	defaultDriveRequestTimeout   = 120
	defaultWebhookURL            = "http://localhost:5678/webhook/enhance-images"
	defaultWebhookTimeoutMinutes = 30
	defaultTickIntervalSeconds   = 60
	defaultMaxConcurrentUsers    = 4
	defaultQuotaFloorMB          = 50
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// MaxListPageSize is the hard ceiling on folder listing page size imposed
// by the remote storage API.
const MaxListPageSize = 50

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		OAuth: OAuth{
			TokenURL: defaultTokenURL,
		},
		Drive: Drive{
			APIBaseURL:     defaultDriveAPIBaseURL,
			UploadBaseURL:  defaultDriveUploadBaseURL,
			ListPageSize:   defaultDriveListPageSize,
			RequestTimeout: defaultDriveRequestTimeout,
		},
		Webhook: Webhook{
			URL:                   defaultWebhookURL,
			RequestTimeoutMinutes: defaultWebhookTimeoutMinutes,
		},
		Watcher: Watcher{
			TickIntervalSeconds: defaultTickIntervalSeconds,
			MaxConcurrentUsers:  defaultMaxConcurrentUsers,
			QuotaFloorMB:        defaultQuotaFloorMB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
