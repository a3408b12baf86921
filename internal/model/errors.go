package model

import (
	"errors"
	"fmt"
)

// User-facing messages fixed by the API contract
const (
	RateLimitMessage    = "Download limit reached for today. Please try again tomorrow."
	MissingURLMessage   = "YouTube URL is required"
	MissingParamMessage = "Missing video ID or formatId"
	DownloadFailMessage = "Failed to download or merge video/audio."
	InfoFailMessage     = "Failed to fetch video info"
)

// Sentinel errors for request rejection before any work is done
var (
	// ErrInvalidRequest means a required field was missing or empty
	ErrInvalidRequest = errors.New("missing required field")

	// ErrRateLimited means the client exhausted its download quota
	ErrRateLimited = errors.New("download limit reached")
)

// DownloadStage identifies which fetch of the mux pipeline failed
type DownloadStage string

const (
	StageVideo DownloadStage = "video"
	StageAudio DownloadStage = "audio"
)

// ExtractionError reports a failed or unparseable metadata extraction. The
// raw tool output is kept for diagnostics and never silently dropped.
type ExtractionError struct {
	Detail    string
	RawOutput string
	Err       error
}

// Error returns the string representation of the extraction failure
func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s", e.Detail)
}

// Unwrap exposes the underlying cause
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// DownloadError reports a failed stream fetch in the mux pipeline
type DownloadError struct {
	Stage DownloadStage
	Err   error
}

// Error returns the string representation of the fetch failure
func (e *DownloadError) Error() string {
	return fmt.Sprintf("%s stream download failed: %v", e.Stage, e.Err)
}

// Unwrap exposes the underlying cause
func (e *DownloadError) Unwrap() error {
	return e.Err
}

// MergeError reports a failed container merge. Output holds the muxer's
// combined output for server-side logging only.
type MergeError struct {
	Output string
	Err    error
}

// Error returns the string representation of the merge failure
func (e *MergeError) Error() string {
	return fmt.Sprintf("merge failed: %v", e.Err)
}

// Unwrap exposes the underlying cause
func (e *MergeError) Unwrap() error {
	return e.Err
}
