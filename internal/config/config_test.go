package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(KeyTempDir, t.TempDir())

	cfg, err := Load(zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if cfg.Port != DefaultPort {
		t.Errorf("expected port %s, got %s", DefaultPort, cfg.Port)
	}
	if cfg.DownloadLimit != DefaultDownloadLimit {
		t.Errorf("expected download limit %d, got %d", DefaultDownloadLimit, cfg.DownloadLimit)
	}
	if cfg.DownloadWindow != DefaultDownloadWindowH*time.Hour {
		t.Errorf("expected window %v, got %v", DefaultDownloadWindowH*time.Hour, cfg.DownloadWindow)
	}
	if cfg.CookiesFile != DefaultCookiesFile {
		t.Errorf("expected cookies file %s, got %s", DefaultCookiesFile, cfg.CookiesFile)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(KeyTempDir, t.TempDir())
	t.Setenv(KeyPort, ":9999")
	t.Setenv(KeyDownloadLimit, "3")
	t.Setenv(KeyDownloadWindow, "1")
	t.Setenv(KeyRedisAddr, "localhost:6379")

	cfg, err := Load(zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if cfg.Port != ":9999" {
		t.Errorf("expected port :9999, got %s", cfg.Port)
	}
	if cfg.DownloadLimit != 3 {
		t.Errorf("expected download limit 3, got %d", cfg.DownloadLimit)
	}
	if cfg.DownloadWindow != time.Hour {
		t.Errorf("expected window 1h, got %v", cfg.DownloadWindow)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("expected redis addr localhost:6379, got %s", cfg.RedisAddr)
	}
}

func TestValidateClamps(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name:  "should reset zero download limit",
			key:   KeyDownloadLimit,
			value: "0",
			check: func(t *testing.T, cfg *Config) {
				if cfg.DownloadLimit != DefaultDownloadLimit {
					t.Errorf("expected limit reset to %d, got %d", DefaultDownloadLimit, cfg.DownloadLimit)
				}
			},
		},
		{
			name:  "should reset negative requests per second",
			key:   KeyRequestsPerSecond,
			value: "-5",
			check: func(t *testing.T, cfg *Config) {
				if cfg.RequestsPerSecond != DefaultRequestsPerSecond {
					t.Errorf("expected rps reset to %d, got %d", DefaultRequestsPerSecond, cfg.RequestsPerSecond)
				}
			},
		},
		{
			name:  "should raise burst to at least rps",
			key:   KeyBurstSize,
			value: "1",
			check: func(t *testing.T, cfg *Config) {
				if cfg.BurstSize < cfg.RequestsPerSecond {
					t.Errorf("burst %d should be at least rps %d", cfg.BurstSize, cfg.RequestsPerSecond)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(KeyTempDir, t.TempDir())
			t.Setenv(tt.key, tt.value)

			cfg, err := Load(zaptest.NewLogger(t))
			if err != nil {
				t.Fatalf("unexpected load error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestValidateCreatesTempDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scratch")
	t.Setenv(KeyTempDir, dir)

	cfg, err := Load(zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if cfg.TempDir != dir {
		t.Fatalf("expected temp dir %s, got %s", dir, cfg.TempDir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("temp dir should have been created: %v", err)
	}
}

func TestLoadFailsOnUnusableTempDir(t *testing.T) {
	// A path below a regular file can never become a directory
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write blocker file: %v", err)
	}
	t.Setenv(KeyTempDir, filepath.Join(blocker, "scratch"))

	if _, err := Load(zaptest.NewLogger(t)); err == nil {
		t.Fatal("expected an error when the temp directory cannot be created")
	}
}
