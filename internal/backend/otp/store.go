package otp

import (
	"context"
	"time"
)

// CodeStore keeps one outstanding code per key until it expires or is taken.
type CodeStore interface {
	// Save replaces any code stored under key and resets its attempt counter.
	Save(ctx context.Context, key, code string, ttl time.Duration) error
	// Get returns the stored code or sentinel.ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Take returns and removes the stored code atomically.
	Take(ctx context.Context, key string) (string, error)
	// IncrAttempts counts a failed confirmation and returns the new total.
	IncrAttempts(ctx context.Context, key string) (int, error)
}
