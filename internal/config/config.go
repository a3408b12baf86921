package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Environment variable keys
const (
	KeyPort              = "PORT"
	KeyTempDir           = "TEMP_DIR"
	KeyStaticDir         = "STATIC_DIR"
	KeyCookiesFile       = "COOKIES_FILE"
	KeyFFmpegPath        = "FFMPEG_PATH"
	KeyAllowedOrigins    = "ALLOWED_ORIGINS"
	KeyRedisAddr         = "REDIS_ADDR"
	KeyDownloadLimit     = "DOWNLOAD_LIMIT"
	KeyDownloadWindow    = "DOWNLOAD_WINDOW_HOURS"
	KeyExtractTimeout    = "EXTRACT_TIMEOUT_SECONDS"
	KeyFetchTimeout      = "FETCH_TIMEOUT_MINUTES"
	KeyMergeTimeout      = "MERGE_TIMEOUT_MINUTES"
	KeyRequestsPerSecond = "REQUESTS_PER_SECOND"
	KeyBurstSize         = "BURST_SIZE"
)

// Default values
const (
	DefaultPort              = ":4000"
	DefaultTempDir           = "temp"
	DefaultStaticDir         = "web/static"
	DefaultCookiesFile       = "cookies.txt"
	DefaultFFmpegPath        = "ffmpeg"
	DefaultDownloadLimit     = 10
	DefaultDownloadWindowH   = 24
	DefaultExtractTimeoutSec = 60
	DefaultFetchTimeoutMin   = 10
	DefaultMergeTimeoutMin   = 5
	DefaultRequestsPerSecond = 20
	DefaultBurstSize         = 40
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Config holds all server settings in correct types
type Config struct {
	Port           string
	TempDir        string
	StaticDir      string
	CookiesFile    string
	FFmpegPath     string
	AllowedOrigins string
	RedisAddr      string

	DownloadLimit  int
	DownloadWindow time.Duration

	ExtractTimeout time.Duration
	FetchTimeout   time.Duration
	MergeTimeout   time.Duration

	RequestsPerSecond int
	BurstSize         int
}

// Load reads configuration from the environment, applying defaults and
// post-load validation. It is the only way to get config in the app. An
// unusable scratch directory is a startup error, not a warning.
func Load(logger *zap.Logger) (*Config, error) {
	cfg := &Config{
		Port:              getEnv(KeyPort, DefaultPort),
		TempDir:           getEnv(KeyTempDir, DefaultTempDir),
		StaticDir:         getEnv(KeyStaticDir, DefaultStaticDir),
		CookiesFile:       getEnv(KeyCookiesFile, DefaultCookiesFile),
		FFmpegPath:        getEnv(KeyFFmpegPath, DefaultFFmpegPath),
		AllowedOrigins:    getEnv(KeyAllowedOrigins, ""),
		RedisAddr:         getEnv(KeyRedisAddr, ""),
		DownloadLimit:     getEnvAsInt(KeyDownloadLimit, DefaultDownloadLimit),
		DownloadWindow:    time.Duration(getEnvAsInt(KeyDownloadWindow, DefaultDownloadWindowH)) * time.Hour,
		ExtractTimeout:    time.Duration(getEnvAsInt(KeyExtractTimeout, DefaultExtractTimeoutSec)) * time.Second,
		FetchTimeout:      time.Duration(getEnvAsInt(KeyFetchTimeout, DefaultFetchTimeoutMin)) * time.Minute,
		MergeTimeout:      time.Duration(getEnvAsInt(KeyMergeTimeout, DefaultMergeTimeoutMin)) * time.Minute,
		RequestsPerSecond: getEnvAsInt(KeyRequestsPerSecond, DefaultRequestsPerSecond),
		BurstSize:         getEnvAsInt(KeyBurstSize, DefaultBurstSize),
	}

	if err := validate(cfg, logger); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	str := getEnv(key, "")
	if val, err := strconv.Atoi(str); err == nil {
		return val
	}
	return fallback
}

// validate ensures the server won't start with unusable settings
func validate(cfg *Config, logger *zap.Logger) error {
	if cfg.DownloadLimit < 1 {
		logger.Warn("download limit must be at least 1, resetting",
			zap.Int("fallback", DefaultDownloadLimit))
		cfg.DownloadLimit = DefaultDownloadLimit
	}
	if cfg.DownloadWindow < time.Minute {
		logger.Warn("download window too small, resetting",
			zap.Int("fallback_hours", DefaultDownloadWindowH))
		cfg.DownloadWindow = DefaultDownloadWindowH * time.Hour
	}
	if cfg.RequestsPerSecond < 1 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.BurstSize < cfg.RequestsPerSecond {
		cfg.BurstSize = cfg.RequestsPerSecond
	}
	if _, err := os.Stat(cfg.TempDir); os.IsNotExist(err) {
		logger.Info("creating missing temp directory", zap.String("dir", cfg.TempDir))
		if err := os.MkdirAll(cfg.TempDir, DefaultDirPermissions); err != nil {
			// Every download job writes here; without it the server is useless
			return fmt.Errorf("create temp directory %s: %w", cfg.TempDir, err)
		}
	}
	return nil
}
