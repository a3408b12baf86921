package ratelimit

// Package ratelimit enforces the per-client download quota: a fixed window
// (24h by default) with a maximum number of attempts per client network
// address. Counters live in memory or, when configured, in Redis so the
// quota survives restarts. Store failures fail open.
