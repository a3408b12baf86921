package model

import "encoding/json"

// Codec sentinel emitted by the extractor for absent streams
const CodecNone = "none"

// VideoInfo holds normalized metadata for a single video. Created per
// request, never persisted.
type VideoInfo struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Thumbnail string          `json:"thumbnail"`
	Formats   []Format        `json:"formats"`
	Details   json.RawMessage `json:"videoDetails"`
}

// Format describes one downloadable stream variant. Only variants carrying a
// video stream are exposed; audio presence is reflected in HasAudio.
type Format struct {
	Itag          string `json:"itag"`
	QualityLabel  string `json:"qualityLabel"`
	ContentLength *int64 `json:"contentLength"`
	MimeType      string `json:"mimeType"`
	URL           string `json:"url"`
	HasAudio      bool   `json:"hasAudio"`
	Container     string `json:"container"`
}
