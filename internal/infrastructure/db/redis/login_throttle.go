package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 5
	defaultWindow      = 15 * time.Minute
)

// LoginThrottle is a fixed-window attempt counter per normalized identifier.
// Key format: login:<identifier>
// Unknown and known identifiers are counted the same way.
type LoginThrottle struct {
	client *redis.Client
	max    int64
	window time.Duration
}

// NewLoginThrottle falls back to 5 attempts per 15 minutes for non-positive values.
func NewLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LoginThrottle{client: client, max: int64(maxAttempts), window: window}
}

// Allow counts one attempt for identifier and reports whether it is within the window budget.
func (t *LoginThrottle) Allow(ctx context.Context, identifier string) (bool, error) {
	key := t.key(identifier)

	pipe := t.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("login throttle: %w", err)
	}
	return incr.Val() <= t.max, nil
}

// Reset clears the window for identifier, typically after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, identifier string) error {
	if err := t.client.Del(ctx, t.key(identifier)).Err(); err != nil {
		return fmt.Errorf("login throttle reset: %w", err)
	}
	return nil
}

func (t *LoginThrottle) key(identifier string) string {
	return "login:" + identifier
}
