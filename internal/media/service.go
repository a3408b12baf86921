package media

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"

	"github.com/vidmux/vidmux/internal/model"
)

// External tool constants
const (
	DefaultFFmpegCommand = "ffmpeg"
	FFmpegLogLevel       = "error"

	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Timeout defaults
const (
	DefaultFetchTimeout = 10 * time.Minute
	DefaultMergeTimeout = 5 * time.Minute
)

// Service runs the three-stage fetch/fetch/merge pipeline
type Service struct {
	fetcher      Fetcher
	ffmpegPath   string
	fetchTimeout time.Duration
	mergeTimeout time.Duration
	logger       *zap.Logger

	// merge runs the external muxer; replaceable in tests
	merge func(ctx context.Context, job *Job) error
}

// Option configures a Service
type Option func(*Service)

// WithFFmpegPath overrides the ffmpeg executable path
func WithFFmpegPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.ffmpegPath = path
		}
	}
}

// WithTimeouts overrides the per-stage timeouts
func WithTimeouts(fetch, merge time.Duration) Option {
	return func(s *Service) {
		if fetch > 0 {
			s.fetchTimeout = fetch
		}
		if merge > 0 {
			s.mergeTimeout = merge
		}
	}
}

// WithFetcher overrides the stream fetcher
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// NewService creates a new mux pipeline service backed by yt-dlp and ffmpeg
func NewService(cookiesFile string, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		fetcher:      &ytdlpFetcher{cookiesFile: cookiesFile},
		ffmpegPath:   DefaultFFmpegCommand,
		fetchTimeout: DefaultFetchTimeout,
		mergeTimeout: DefaultMergeTimeout,
		logger:       logger,
	}
	s.merge = s.mergeStreams
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mux runs the pipeline stages in order. Any stage failure aborts the rest;
// the caller's job scope is responsible for scratch cleanup. No retries.
func (s *Service) Mux(ctx context.Context, job *Job) error {
	if err := s.fetchStage(ctx, job.VideoID, job.FormatID, job.VideoPath); err != nil {
		return &model.DownloadError{Stage: model.StageVideo, Err: err}
	}

	if err := s.fetchStage(ctx, job.VideoID, BestAudioSelector, job.AudioPath); err != nil {
		return &model.DownloadError{Stage: model.StageAudio, Err: err}
	}

	if err := s.merge(ctx, job); err != nil {
		return err
	}

	return nil
}

// fetchStage fetches a single stream variant under its own timeout. The
// context kills the external process on expiry.
func (s *Service) fetchStage(ctx context.Context, videoID, format, outputPath string) error {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	return s.fetcher.FetchFormat(ctx, videoID, format, outputPath)
}

// mergeStreams copies both streams into one container without re-encoding
func (s *Service) mergeStreams(ctx context.Context, job *Job) error {
	ctx, cancel := context.WithTimeout(ctx, s.mergeTimeout)
	defer cancel()

	args := s.BuildMergeArgs(job.VideoPath, job.AudioPath, job.OutputPath)
	cmd := exec.CommandContext(ctx, s.ffmpegPath, args...)

	if out, err := cmd.CombinedOutput(); err != nil {
		// The muxer's output stays server-side; clients get a generic message
		s.logger.Error("ffmpeg merge failed",
			zap.String("job_id", job.ID),
			zap.String("output", string(out)),
			zap.Error(err))
		return &model.MergeError{Output: string(out), Err: err}
	}
	return nil
}

// BuildMergeArgs builds the ffmpeg command arguments for a stream copy merge
func (s *Service) BuildMergeArgs(videoPath, audioPath, outputPath string) []string {
	return []string{
		"-y", // Overwrite output file
		"-hide_banner",
		"-loglevel", FFmpegLogLevel,
		"-i", videoPath, // Video-only input
		"-i", audioPath, // Audio-only input
		"-c", "copy", // No re-encode
		outputPath,
	}
}

// ytdlpFetcher fetches a single stream through yt-dlp
type ytdlpFetcher struct {
	cookiesFile string
}

// FetchFormat downloads exactly the requested format to outputPath
func (f *ytdlpFetcher) FetchFormat(ctx context.Context, videoID, format, outputPath string) error {
	dl := ytdlp.New().
		ForceOverwrites().
		NoPlaylist().
		Format(format).
		Output(outputPath)
	if f.cookiesFile != "" {
		dl = dl.Cookies(f.cookiesFile)
	}

	_, err := dl.Run(ctx, fmt.Sprintf(YouTubeVideoURLTemplate, videoID))
	return err
}
