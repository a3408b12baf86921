package api

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/vidmux/vidmux/internal/config"
)

// NewRouter sets up routes and applies global middleware. The entire API
// surface is the two operations; everything else is the static client page.
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	throttle := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/video-info", ThrottleMiddleware(throttle, h.VideoInfo))
	mux.HandleFunc("/api/download", ThrottleMiddleware(throttle, h.Download))
	mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))

	return CORSMiddleware(cfg.AllowedOrigins, mux)
}
