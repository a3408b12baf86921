package model

// Package model defines domain data structures shared across the service:
// video metadata, stream formats, and the error taxonomy mapped to HTTP
// status codes at the API boundary.
