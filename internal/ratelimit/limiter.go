// Package ratelimit provides the fixed-window counter that throttles calls to
// the streaming platform moderation API.
package ratelimit

import (
	"context"
	"time"
)

// Result describes the window state after one attempt was counted.
type Result struct {
	Allowed bool
	Count   int
	Limit   int
	ResetAt time.Time
}

// Limiter counts attempts against a per-key window. Every attempt consumes
// budget, including attempts over the limit, so a saturated caller cannot
// probe for free: the limiter fails closed.
type Limiter interface {
	// Take records one attempt for key and reports whether it fits the
	// current window.
	Take(ctx context.Context, key string) (Result, error)
}

// GlobalKey is the key used when the limiter is configured with global scope.
const GlobalKey = "global"
