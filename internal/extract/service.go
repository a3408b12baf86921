package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"go.uber.org/zap"

	"github.com/vidmux/vidmux/internal/model"
)

// Timeout constants
const (
	DefaultExtractTimeout = 60 * time.Second
)

// Thumbnail normalization constants
const (
	ThumbnailFallbackTemplate = "https://img.youtube.com/vi/%s/hqdefault.jpg"
	InsecureSchemePrefix      = "http://"
	SecureSchemePrefix        = "https://"
	SchemeRelativePrefix      = "//"
)

// Service extracts video metadata through yt-dlp
type Service struct {
	cookiesFile string
	timeout     time.Duration
	logger      *zap.Logger

	// dump runs the external tool; replaceable in tests
	dump func(ctx context.Context, url string) (string, error)
}

// NewService creates a new extraction service. cookiesFile is the opaque
// session artifact consumed by yt-dlp; empty disables it.
func NewService(cookiesFile string, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultExtractTimeout
	}
	s := &Service{
		cookiesFile: cookiesFile,
		timeout:     timeout,
		logger:      logger,
	}
	s.dump = s.runYTDLP
	return s
}

// VideoInfo resolves a URL into normalized metadata. All URL semantics are
// delegated to yt-dlp; no local identifier validation happens here.
func (s *Service) VideoInfo(ctx context.Context, url string) (*model.VideoInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.dump(ctx, url)
	if err != nil {
		return nil, &model.ExtractionError{
			Detail:    "yt-dlp invocation failed",
			RawOutput: raw,
			Err:       err,
		}
	}

	payload, err := parsePayload(raw)
	if err != nil {
		return nil, &model.ExtractionError{
			Detail:    "unparseable yt-dlp output",
			RawOutput: raw,
			Err:       err,
		}
	}

	var data videoJSON
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, &model.ExtractionError{
			Detail:    "unexpected yt-dlp output shape",
			RawOutput: raw,
			Err:       err,
		}
	}

	info := &model.VideoInfo{
		ID:        data.ID,
		Title:     data.Title,
		Thumbnail: normalizeThumbnail(&data),
		Formats:   mapFormats(data.Formats),
		Details:   json.RawMessage(payload),
	}

	s.logger.Info("video info extracted",
		zap.String("video_id", info.ID),
		zap.Int("formats", len(info.Formats)))

	return info, nil
}

// runYTDLP invokes yt-dlp and returns its JSON stdout
func (s *Service) runYTDLP(ctx context.Context, url string) (string, error) {
	dl := ytdlp.New().
		DumpSingleJSON().
		NoPlaylist()
	if s.cookiesFile != "" {
		dl = dl.Cookies(s.cookiesFile)
	}

	result, err := dl.Run(ctx, url)
	if err != nil {
		if result != nil {
			return result.Stderr, err
		}
		return "", err
	}
	return result.Stdout, nil
}

// videoJSON mirrors the subset of yt-dlp's dump-json output we consume
type videoJSON struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Thumbnail  string `json:"thumbnail"`
	Thumbnails []struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
	Formats []formatJSON `json:"formats"`
}

type formatJSON struct {
	FormatID       string  `json:"format_id"`
	FormatNote     string  `json:"format_note"`
	Resolution     string  `json:"resolution"`
	Quality        float64 `json:"quality"`
	Ext            string  `json:"ext"`
	URL            string  `json:"url"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	Filesize       int64   `json:"filesize"`
	FilesizeApprox float64 `json:"filesize_approx"`
}

// parsePayload accepts either a single JSON object or JSON-lines stdout and
// returns the first object carrying a video id.
func parsePayload(raw string) ([]byte, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("empty output")
	}

	if json.Valid([]byte(trimmed)) {
		return []byte(trimmed), nil
	}

	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var probe struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal([]byte(line), &probe); err != nil {
			continue
		}
		if probe.ID != "" {
			return []byte(line), nil
		}
	}

	return nil, fmt.Errorf("no JSON object found in output")
}

// mapFormats filters out audio-only entries and maps the rest to the wire
// shape. Entries with no video codec never reach the client.
func mapFormats(raw []formatJSON) []model.Format {
	formats := make([]model.Format, 0, len(raw))
	for _, f := range raw {
		if f.VCodec == model.CodecNone || f.VCodec == "" {
			continue
		}
		formats = append(formats, model.Format{
			Itag:          f.FormatID,
			QualityLabel:  qualityLabel(f),
			ContentLength: contentLength(f),
			MimeType:      f.Ext,
			URL:           f.URL,
			HasAudio:      f.ACodec != model.CodecNone && f.ACodec != "",
			Container:     f.Ext,
		})
	}
	return formats
}

// qualityLabel falls back through named quality fields, then raw resolution;
// first non-empty wins.
func qualityLabel(f formatJSON) string {
	if f.FormatNote != "" {
		return f.FormatNote
	}
	if f.Resolution != "" {
		return f.Resolution
	}
	if f.Quality != 0 {
		return fmt.Sprintf("%g", f.Quality)
	}
	return ""
}

// contentLength reports exact size first, approximate second, nil when the
// extractor knows neither.
func contentLength(f formatJSON) *int64 {
	if f.Filesize > 0 {
		size := f.Filesize
		return &size
	}
	if f.FilesizeApprox > 0 {
		size := int64(f.FilesizeApprox)
		return &size
	}
	return nil
}

// normalizeThumbnail picks the best thumbnail and forces HTTPS. The last
// entry of the thumbnails array is the highest quality one.
func normalizeThumbnail(data *videoJSON) string {
	url := data.Thumbnail
	if url == "" && len(data.Thumbnails) > 0 {
		url = data.Thumbnails[len(data.Thumbnails)-1].URL
	}

	switch {
	case strings.HasPrefix(url, InsecureSchemePrefix):
		url = SecureSchemePrefix + strings.TrimPrefix(url, InsecureSchemePrefix)
	case strings.HasPrefix(url, SchemeRelativePrefix):
		url = "https:" + url
	}

	if url == "" {
		return fmt.Sprintf(ThumbnailFallbackTemplate, data.ID)
	}
	return url
}
