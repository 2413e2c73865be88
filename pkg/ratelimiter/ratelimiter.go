package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"anoa.com/jobboard/pkg/apperror"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimitError is returned when a user repeats an action inside its window.
type RateLimitError struct {
	Action     string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter <= 0 {
		return "too many requests, please slow down"
	}
	return fmt.Sprintf("too many requests, try again in %s", e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

// Limiter allows one action per user per window, backed by redis SETNX.
// A nil Limiter, or one without a client, allows everything.
type Limiter struct {
	rdb *redis.Client
	log logrus.FieldLogger
}

func New(rdb *redis.Client, log logrus.FieldLogger) *Limiter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Limiter{rdb: rdb, log: log}
}

func key(userID uint, action string) string {
	return fmt.Sprintf("rate_limit:user:%d:%s", userID, action)
}

// Check reserves the action for window, or returns a *RateLimitError when the
// previous reservation has not expired yet. A redis failure is logged and the
// action allowed.
func (l *Limiter) Check(ctx context.Context, userID uint, action string, window time.Duration) error {
	if l == nil || l.rdb == nil || window <= 0 {
		return nil
	}

	wasSet, err := l.rdb.SetNX(ctx, key(userID, action), "locked", window).Result()
	if err != nil {
		l.log.WithError(err).WithFields(logrus.Fields{"user_id": userID, "action": action}).
			Warn("rate limit check failed, allowing request")
		return nil
	}
	if wasSet {
		return nil
	}

	ttl, err := l.rdb.TTL(ctx, key(userID, action)).Result()
	if err != nil {
		ttl = 0
	}
	return &RateLimitError{Action: action, RetryAfter: ttl}
}

// Clear releases a reservation, used when the limited action did not happen.
func (l *Limiter) Clear(ctx context.Context, userID uint, action string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, key(userID, action)).Err()
}
