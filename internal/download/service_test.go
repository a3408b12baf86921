package download

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/vidmux/vidmux/internal/media"
	"github.com/vidmux/vidmux/internal/model"
	"github.com/vidmux/vidmux/internal/ratelimit"
)

// fakeMuxer counts pipeline runs and fails on demand
type fakeMuxer struct {
	calls int
	fail  error
}

func (m *fakeMuxer) Mux(ctx context.Context, job *media.Job) error {
	m.calls++
	if m.fail != nil {
		return m.fail
	}
	// Leave all three scratch files behind, as the real pipeline does
	for _, path := range []string{job.VideoPath, job.AudioPath, job.OutputPath} {
		if err := os.WriteFile(path, []byte("bytes"), 0644); err != nil {
			return err
		}
	}
	return nil
}

func newTestService(t *testing.T, muxer media.Muxer, limit int) (*Service, string) {
	dir := t.TempDir()
	limiter := ratelimit.NewLimiter(limit, 24*time.Hour, ratelimit.NewMemoryStore(), zaptest.NewLogger(t))
	return NewService(muxer, limiter, dir, zaptest.NewLogger(t)), dir
}

func TestDownloadSuccess(t *testing.T) {
	muxer := &fakeMuxer{}
	s, dir := newTestService(t, muxer, 10)

	stream, filename, err := s.Download(context.Background(), "10.0.0.1", "dQw4w9WgXcQ", "137")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filename != "dQw4w9WgXcQ-137.mp4" {
		t.Errorf("expected filename dQw4w9WgXcQ-137.mp4, got %s", filename)
	}

	data, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("stream read failed: %v", err)
	}
	if string(data) != "bytes" {
		t.Errorf("expected merged content, got %q", data)
	}

	if err := stream.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	assertScratchEmpty(t, dir)
}

func TestDownloadValidation(t *testing.T) {
	tests := []struct {
		name     string
		videoID  string
		formatID string
	}{
		{name: "should reject empty video id", videoID: "", formatID: "137"},
		{name: "should reject empty format id", videoID: "dQw4w9WgXcQ", formatID: ""},
		{name: "should reject both empty", videoID: "", formatID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			muxer := &fakeMuxer{}
			s, _ := newTestService(t, muxer, 10)

			_, _, err := s.Download(context.Background(), "10.0.0.1", tt.videoID, tt.formatID)
			if !errors.Is(err, model.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
			if muxer.calls != 0 {
				t.Error("pipeline must not run for invalid requests")
			}
		})
	}
}

func TestDownloadRateLimited(t *testing.T) {
	muxer := &fakeMuxer{}
	s, dir := newTestService(t, muxer, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		stream, _, err := s.Download(ctx, "10.0.0.1", "dQw4w9WgXcQ", "137")
		if err != nil {
			t.Fatalf("attempt %d should pass: %v", i+1, err)
		}
		stream.Close()
	}

	_, _, err := s.Download(ctx, "10.0.0.1", "dQw4w9WgXcQ", "137")
	if !errors.Is(err, model.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if muxer.calls != 2 {
		t.Errorf("rejected request must do no pipeline work, got %d calls", muxer.calls)
	}
	assertScratchEmpty(t, dir)
}

func TestDownloadPipelineFailureCleansUp(t *testing.T) {
	muxer := &fakeMuxer{fail: &model.DownloadError{Stage: model.StageAudio, Err: errors.New("boom")}}
	s, dir := newTestService(t, muxer, 10)

	_, _, err := s.Download(context.Background(), "10.0.0.1", "dQw4w9WgXcQ", "137")
	if err == nil {
		t.Fatal("expected pipeline failure to surface")
	}

	var dlErr *model.DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected DownloadError, got %T", err)
	}

	assertScratchEmpty(t, dir)
}

func TestDownloadMissingOutputCleansUp(t *testing.T) {
	// Muxer reports success but produced nothing
	muxer := &muxerWithoutOutput{}
	s, dir := newTestService(t, muxer, 10)

	_, _, err := s.Download(context.Background(), "10.0.0.1", "dQw4w9WgXcQ", "137")

	var mErr *model.MergeError
	if !errors.As(err, &mErr) {
		t.Fatalf("expected MergeError, got %v", err)
	}
	assertScratchEmpty(t, dir)
}

type muxerWithoutOutput struct{}

func (muxerWithoutOutput) Mux(ctx context.Context, job *media.Job) error {
	return nil
}

// assertScratchEmpty verifies no job-scoped temp files remain on disk
func assertScratchEmpty(t *testing.T, dir string) {
	t.Helper()
	leftovers, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	if len(leftovers) != 0 {
		t.Errorf("expected no scratch files, found %v", leftovers)
	}
}
