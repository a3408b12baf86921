package media

// Package media implements the fetch-and-mux pipeline: the selected video
// stream and the best audio stream are fetched separately through yt-dlp,
// then copied into a single MP4 container by ffmpeg without re-encoding.
// Each job owns three scratch files whose removal is guaranteed exactly once.
