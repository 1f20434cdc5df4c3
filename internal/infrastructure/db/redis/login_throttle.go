package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxAttempts = 5
	defaultWindow      = 15 * time.Minute
)

// LoginThrottle counts failed sign-ins per username in a fixed window.
// Key format: login_fail:<username>
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

// NewLoginThrottle creates a LoginThrottle wrapping the given Redis client.
// Non-positive limits fall back to 5 attempts per 15 minutes.
func NewLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LoginThrottle{client: client, maxAttempts: int64(maxAttempts), window: window}
}

// Blocked reports whether the username has used up its failed attempts.
func (t *LoginThrottle) Blocked(ctx context.Context, username string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := t.client.Get(ctx, t.key(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("login throttle check: %w", err)
	}
	return n >= t.maxAttempts, nil
}

// RecordFailure bumps the counter. The window starts at the first failure and
// is not extended by later ones.
func (t *LoginThrottle) RecordFailure(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	key := t.key(username)
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, t.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("login throttle record: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful sign-in.
func (t *LoginThrottle) Reset(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return t.client.Del(ctx, t.key(username)).Err()
}

func (t *LoginThrottle) key(username string) string {
	return "login_fail:" + username
}
