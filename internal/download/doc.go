package download

// Package download orchestrates one download request: input validation,
// quota enforcement, the fetch/mux pipeline, and streaming the merged file
// back with a delete-on-close guarantee over the job's scratch files.
