package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Temp file name suffixes
const (
	VideoSuffix  = "video.mp4"
	AudioSuffix  = "audio.m4a"
	MergedSuffix = "merged.mp4"

	// BestAudioSelector is the yt-dlp selector for the audio fetch stage
	BestAudioSelector = "bestaudio"
)

// Job is the scratch-file scope of one download request. All three paths
// carry a job-unique component so concurrent requests for the same video and
// format never collide.
type Job struct {
	ID       string
	VideoID  string
	FormatID string

	VideoPath  string
	AudioPath  string
	OutputPath string

	cleanupOnce sync.Once
	logger      *zap.Logger
}

// NewJob acquires a fresh scratch scope under tempDir
func NewJob(tempDir, videoID, formatID string, logger *zap.Logger) *Job {
	id := generateJobID()
	return &Job{
		ID:         id,
		VideoID:    videoID,
		FormatID:   formatID,
		VideoPath:  filepath.Join(tempDir, fmt.Sprintf("%s-%s-%s-%s", videoID, formatID, id, VideoSuffix)),
		AudioPath:  filepath.Join(tempDir, fmt.Sprintf("%s-%s-%s-%s", videoID, BestAudioSelector, id, AudioSuffix)),
		OutputPath: filepath.Join(tempDir, fmt.Sprintf("%s-%s-%s-%s", videoID, formatID, id, MergedSuffix)),
		logger:     logger,
	}
}

// Filename is the attachment name presented to the client
func (j *Job) Filename() string {
	return fmt.Sprintf("%s-%s.mp4", j.VideoID, j.FormatID)
}

// Cleanup removes all scratch files, best-effort and exactly once. A failed
// deletion is logged, never escalated.
func (j *Job) Cleanup() {
	j.cleanupOnce.Do(func() {
		for _, path := range []string{j.VideoPath, j.AudioPath, j.OutputPath} {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				if j.logger != nil {
					j.logger.Warn("failed to remove scratch file",
						zap.String("path", path),
						zap.Error(err))
				}
			}
		}
	})
}

// generateJobID generates a unique job ID using UUID v7 for better
// uniqueness and time ordering
func generateJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return id.String()
}
