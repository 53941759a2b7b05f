// Package guard holds short-lived server state shared between requests:
// login challenges, processed request digests and faucet counters.
package guard

import (
	"context"
	"time"
)

// Store is a TTL key-value store.
type Store interface {
	// Claim sets key for ttl if it is absent and reports whether it did.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Take returns and removes the value at key. ok is false if absent.
	Take(ctx context.Context, key string) (value string, ok bool, err error)
	// Incr bumps the counter at key. The first hit starts a window of the
	// given length after which the counter resets.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Close() error
}
