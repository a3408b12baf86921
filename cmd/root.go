package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/vidmux/vidmux/internal/api"
	"github.com/vidmux/vidmux/internal/config"
	"github.com/vidmux/vidmux/internal/download"
	"github.com/vidmux/vidmux/internal/extract"
	"github.com/vidmux/vidmux/internal/media"
	"github.com/vidmux/vidmux/internal/ratelimit"
)

// Shutdown grace period for in-flight requests
const shutdownTimeout = 10 * time.Second

var (
	port    string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "vidmux",
	Short: "HTTP service that fetches and muxes video downloads",
	Long: `vidmux serves a small web client and two API operations: one to inspect
the formats available for a video URL and one to download a chosen format
muxed with best audio into a single MP4. Extraction is delegated to yt-dlp
and merging to ffmpeg.`,
}

// Execute runs the server until ctx is cancelled
func Execute(ctx context.Context, logger *zap.Logger) error {
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(ctx, logger)
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVarP(&port, "port", "p", "", "Listen address (overrides PORT)")
	rootCmd.Flags().StringVarP(&envFile, "env-file", "e", "", "Path to an env file to load")
	pflag.CommandLine.AddFlagSet(rootCmd.Flags())
}

func run(ctx context.Context, logger *zap.Logger) error {
	loadEnv(logger)

	cfg, err := config.Load(logger)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Port = port
	}

	store := buildQuotaStore(ctx, cfg, logger)
	limiter := ratelimit.NewLimiter(cfg.DownloadLimit, cfg.DownloadWindow, store, logger)

	extractor := extract.NewService(cfg.CookiesFile, cfg.ExtractTimeout, logger)
	muxer := media.NewService(cfg.CookiesFile, logger,
		media.WithFFmpegPath(cfg.FFmpegPath),
		media.WithTimeouts(cfg.FetchTimeout, cfg.MergeTimeout))
	downloads := download.NewService(muxer, limiter, cfg.TempDir, logger)

	handler := api.NewHandler(extractor, downloads, logger)
	server := &http.Server{
		Addr:    cfg.Port,
		Handler: api.NewRouter(handler, cfg),
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Port),
			zap.Int("download_limit", cfg.DownloadLimit),
			zap.Duration("download_window", cfg.DownloadWindow))
		errChan <- server.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
			return err
		}
		return nil
	}
}

// loadEnv loads an env file when present; a missing default file is fine
func loadEnv(logger *zap.Logger) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			logger.Warn("failed to load env file",
				zap.String("path", envFile),
				zap.Error(err))
		}
		return
	}
	godotenv.Load()
}

// buildQuotaStore prefers Redis when configured and reachable, otherwise
// falls back to the in-memory store with a background sweep.
func buildQuotaStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) ratelimit.Store {
	if cfg.RedisAddr != "" {
		store, err := ratelimit.NewRedisStore(ctx, cfg.RedisAddr)
		if err == nil {
			logger.Info("quota counters backed by redis", zap.String("addr", cfg.RedisAddr))
			return store
		}
		logger.Warn("redis not available, using in-memory quota store", zap.Error(err))
	}

	store := ratelimit.NewMemoryStore()
	store.StartJanitor(ctx, ratelimit.DefaultSweepInterval, cfg.DownloadWindow)
	return store
}
