package media

import "context"

// Fetcher downloads a single stream variant to a local path.
type Fetcher interface {
	FetchFormat(ctx context.Context, videoID, format, outputPath string) error
}

// Muxer produces a single merged media file inside a job's scratch scope.
type Muxer interface {
	Mux(ctx context.Context, job *Job) error
}
