package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"anoa.com/yamdb/pkg/apperror"
	"github.com/redis/go-redis/v9"
)

// Limiter is a per subject cooldown backed by Redis SETNX. A nil client or a
// zero window disables it.
type Limiter struct {
	rdb    *redis.Client
	action string
	window time.Duration
}

func New(rdb *redis.Client, action string, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, action: action, window: window}
}

func (l *Limiter) enabled() bool {
	return l != nil && l.rdb != nil && l.window > 0
}

func (l *Limiter) key(subject string) string {
	return fmt.Sprintf("rate_limit:%s:%s", l.action, subject)
}

// Allow claims the cooldown slot for subject. It returns false while a
// previous claim is still live.
func (l *Limiter) Allow(ctx context.Context, subject string) (bool, error) {
	if !l.enabled() {
		return true, nil
	}

	wasSet, err := l.rdb.SetNX(ctx, l.key(subject), "locked", l.window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	return wasSet, nil
}

// TTL reports how long subject has to wait.
func (l *Limiter) TTL(ctx context.Context, subject string) (time.Duration, error) {
	if !l.enabled() {
		return 0, nil
	}
	return l.rdb.TTL(ctx, l.key(subject)).Result()
}

// Clear releases the slot, used when the guarded action failed.
func (l *Limiter) Clear(ctx context.Context, subject string) error {
	if !l.enabled() {
		return nil
	}
	return l.rdb.Del(ctx, l.key(subject)).Err()
}

// RateLimitError tells the client how long to back off.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

// Check claims the slot and converts a refusal into a *RateLimitError.
func (l *Limiter) Check(ctx context.Context, subject, message string) error {
	ok, err := l.Allow(ctx, subject)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	ttl, err := l.TTL(ctx, subject)
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	return &RateLimitError{Message: message, RetryAfter: ttl}
}
