package download

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/vidmux/vidmux/internal/media"
	"github.com/vidmux/vidmux/internal/model"
	"github.com/vidmux/vidmux/internal/ratelimit"
)

// Service sequences the mux pipeline for one request at a time per call.
// It owns no cross-request state; the quota limiter is the only shared piece.
type Service struct {
	muxer   media.Muxer
	limiter *ratelimit.Limiter
	tempDir string
	logger  *zap.Logger
}

// NewService creates a new download orchestrator
func NewService(muxer media.Muxer, limiter *ratelimit.Limiter, tempDir string, logger *zap.Logger) *Service {
	return &Service{
		muxer:   muxer,
		limiter: limiter,
		tempDir: tempDir,
		logger:  logger,
	}
}

// Download validates the request, charges the quota, runs the pipeline, and
// returns a stream whose Close releases all scratch files. Rejections happen
// before any filesystem or external-process work.
func (s *Service) Download(ctx context.Context, clientAddr, videoID, formatID string) (io.ReadCloser, string, error) {
	if videoID == "" || formatID == "" {
		return nil, "", model.ErrInvalidRequest
	}

	if !s.limiter.Allow(ctx, clientAddr) {
		return nil, "", model.ErrRateLimited
	}

	job := media.NewJob(s.tempDir, videoID, formatID, s.logger)

	if err := s.muxer.Mux(ctx, job); err != nil {
		job.Cleanup()
		return nil, "", err
	}

	file, err := os.Open(job.OutputPath)
	if err != nil {
		job.Cleanup()
		return nil, "", &model.MergeError{Err: err}
	}

	s.logger.Info("download ready",
		zap.String("video_id", videoID),
		zap.String("format_id", formatID),
		zap.String("job_id", job.ID))

	return &jobStream{file: file, job: job}, job.Filename(), nil
}

// jobStream streams the merged file and releases the job scope on Close.
// Close runs on every exit path of the HTTP handler, including client
// disconnects mid-copy.
type jobStream struct {
	file *os.File
	job  *media.Job
}

// Read reads from the merged file
func (s *jobStream) Read(p []byte) (int, error) {
	return s.file.Read(p)
}

// Close closes the file and removes all scratch files
func (s *jobStream) Close() error {
	err := s.file.Close()
	s.job.Cleanup()
	return err
}
