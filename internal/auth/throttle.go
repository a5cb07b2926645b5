package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/112Alex/authgate/internal/shared"
)

// LoginThrottle counts failed login attempts per account and client IP in
// Redis. Counters expire with the window, so no sweeping is needed. Redis
// being down must not lock everyone out, so errors fail open with the IP
// rate limiter as the remaining backstop.
type LoginThrottle struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewLoginThrottle constructs a LoginThrottle.
func NewLoginThrottle(client *redis.Client, limit int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, limit: int64(limit), window: window}
}

// Allow reports whether another attempt is permitted.
func (t *LoginThrottle) Allow(ctx context.Context, email, ip string) (bool, error) {
	if t == nil || t.client == nil {
		return true, nil
	}
	count, err := t.client.Get(ctx, t.key(email, ip)).Int64()
	if err != nil {
		if err == redis.Nil {
			return true, nil
		}
		return true, err
	}
	return count < t.limit, nil
}

// RecordFailure increments the failure counter, starting the expiry
// window on the first failure.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email, ip string) error {
	if t == nil || t.client == nil {
		return nil
	}
	key := t.key(email, ip)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return t.client.Expire(ctx, key, t.window).Err()
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email, ip string) error {
	if t == nil || t.client == nil {
		return nil
	}
	return t.client.Del(ctx, t.key(email, ip)).Err()
}

func (t *LoginThrottle) key(email, ip string) string {
	return fmt.Sprintf("login_throttle:%s:%s", shared.NormalizeEmail(email), ip)
}
