package download

import (
	"context"
	"io"
)

// Downloader defines the interface for the download orchestrator.
type Downloader interface {
	// Download produces a stream over the merged file for (videoID, formatID).
	// clientAddr keys the quota. The returned filename is the attachment name;
	// closing the stream releases the job's scratch files.
	Download(ctx context.Context, clientAddr, videoID, formatID string) (io.ReadCloser, string, error)
}
