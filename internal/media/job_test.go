package media

import (
	"os"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestNewJobPaths(t *testing.T) {
	dir := t.TempDir()
	job := NewJob(dir, "dQw4w9WgXcQ", "137", zaptest.NewLogger(t))

	for _, path := range []string{job.VideoPath, job.AudioPath, job.OutputPath} {
		if !strings.HasPrefix(path, dir) {
			t.Errorf("path %s should live under %s", path, dir)
		}
		if !strings.Contains(path, "dQw4w9WgXcQ") {
			t.Errorf("path %s should contain the video id", path)
		}
		if !strings.Contains(path, job.ID) {
			t.Errorf("path %s should contain the job id", path)
		}
	}

	if job.VideoPath == job.AudioPath || job.AudioPath == job.OutputPath || job.VideoPath == job.OutputPath {
		t.Error("the three scratch paths must be distinct")
	}
}

func TestNewJobNoCollision(t *testing.T) {
	dir := t.TempDir()

	// Same (videoID, formatID) pair from two concurrent clients
	a := NewJob(dir, "dQw4w9WgXcQ", "137", zaptest.NewLogger(t))
	b := NewJob(dir, "dQw4w9WgXcQ", "137", zaptest.NewLogger(t))

	if a.VideoPath == b.VideoPath {
		t.Error("video paths of identical selections must not collide")
	}
	if a.AudioPath == b.AudioPath {
		t.Error("audio paths of identical selections must not collide")
	}
	if a.OutputPath == b.OutputPath {
		t.Error("output paths of identical selections must not collide")
	}
}

func TestJobFilename(t *testing.T) {
	job := NewJob(t.TempDir(), "dQw4w9WgXcQ", "137", zaptest.NewLogger(t))

	if job.Filename() != "dQw4w9WgXcQ-137.mp4" {
		t.Errorf("expected dQw4w9WgXcQ-137.mp4, got %s", job.Filename())
	}
}

func TestJobCleanup(t *testing.T) {
	job := NewJob(t.TempDir(), "vid12345678", "22", zaptest.NewLogger(t))

	for _, path := range []string{job.VideoPath, job.AudioPath, job.OutputPath} {
		if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
			t.Fatalf("failed to create scratch file: %v", err)
		}
	}

	job.Cleanup()

	for _, path := range []string{job.VideoPath, job.AudioPath, job.OutputPath} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("scratch file %s should be removed", path)
		}
	}
}

func TestJobCleanupIdempotent(t *testing.T) {
	job := NewJob(t.TempDir(), "vid12345678", "22", zaptest.NewLogger(t))

	// Partial scope: only the video file exists
	if err := os.WriteFile(job.VideoPath, []byte("data"), 0644); err != nil {
		t.Fatalf("failed to create scratch file: %v", err)
	}

	job.Cleanup()
	job.Cleanup() // second release must be a no-op

	if _, err := os.Stat(job.VideoPath); !os.IsNotExist(err) {
		t.Error("scratch file should be removed")
	}
}
