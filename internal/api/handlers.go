package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vidmux/vidmux/internal/download"
	"github.com/vidmux/vidmux/internal/extract"
	"github.com/vidmux/vidmux/internal/model"
)

// Handler serves the two API operations
type Handler struct {
	extractor extract.Extractor
	downloads download.Downloader
	logger    *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(extractor extract.Extractor, downloads download.Downloader, logger *zap.Logger) *Handler {
	return &Handler{
		extractor: extractor,
		downloads: downloads,
		logger:    logger,
	}
}

type videoInfoRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// VideoInfo handles POST /api/video-info
func (h *Handler) VideoInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req videoInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: model.MissingURLMessage})
		return
	}

	info, err := h.extractor.VideoInfo(r.Context(), req.URL)
	if err != nil {
		h.logger.Error("extraction failed", zap.String("url", req.URL), zap.Error(err))

		detail := err.Error()
		var exErr *model.ExtractionError
		if errors.As(err, &exErr) {
			detail = exErr.Detail
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   model.InfoFailMessage,
			Details: detail,
		})
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// Download handles GET /api/download?id&formatId
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	videoID := r.URL.Query().Get("id")
	formatID := r.URL.Query().Get("formatId")
	if videoID == "" || formatID == "" {
		http.Error(w, model.MissingParamMessage, http.StatusBadRequest)
		return
	}

	stream, filename, err := h.downloads.Download(r.Context(), clientAddr(r), videoID, formatID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidRequest):
			http.Error(w, model.MissingParamMessage, http.StatusBadRequest)
		case errors.Is(err, model.ErrRateLimited):
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: model.RateLimitMessage})
		default:
			// Underlying cause stays server-side only
			h.logger.Error("download failed",
				zap.String("video_id", videoID),
				zap.String("format_id", formatID),
				zap.Error(err))
			http.Error(w, model.DownloadFailMessage, http.StatusInternalServerError)
		}
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := io.Copy(w, stream); err != nil {
		// Client disconnects land here; scratch cleanup still runs via Close
		h.logger.Warn("streaming interrupted",
			zap.String("video_id", videoID),
			zap.Error(err))
	}
}

// clientAddr keys the quota: first X-Forwarded-For hop when present, else
// the connection's remote host.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx >= 0 {
			fwd = fwd[:idx]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already out; nothing left to do
		return
	}
}
