package port

import (
	"context"
	"time"
)

// RateLimitStore tracks request attempts per client inside a sliding window.
type RateLimitStore interface {
	// Allow records the attempt and reports whether it stays within limit
	// for the window ending at the supplied instant.
	Allow(ctx context.Context, identifier string, limit int, window time.Duration, at time.Time) (bool, error)
}
