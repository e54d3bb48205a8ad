package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// API identifies a Google API for rate limiting purposes.
type API string

const (
	// Drive is the Google Drive API.
	Drive API = "drive"
	// Photos is the Google Photos Library API.
	Photos API = "photos"
)

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// Burst is the maximum burst size.
	Burst int
}

// Defaults are well below Google's published per-user limits.
var Defaults = map[API]Config{
	Drive:  {RequestsPerSecond: 8.0, Burst: 10},
	Photos: {RequestsPerSecond: 5.0, Burst: 10},
}

// Limiter paces outgoing requests with a token bucket.
// A rate limit error reported by the API does not delay later requests.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter for api.
// Non-positive values in cfg fall back to Defaults[api].
func New(api API, cfg Config) *Limiter {
	def := Defaults[api]
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// Wait blocks until a request can be made or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
