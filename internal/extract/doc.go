package extract

// Package extract resolves a video URL into normalized metadata by driving
// the external yt-dlp tool (via github.com/lrstanley/go-ytdlp). It filters
// the raw format list to variants with a video stream and normalizes
// thumbnails and quality labels for the client.
