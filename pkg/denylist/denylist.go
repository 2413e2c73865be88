package denylist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned by Revoke when no redis client is configured.
var ErrUnavailable = errors.New("token deny-list unavailable")

// DenyList remembers revoked token ids until the tokens would have expired
// anyway. A nil DenyList, or one without a client, revokes nothing.
type DenyList struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *DenyList {
	return &DenyList{rdb: rdb}
}

func key(tokenID string) string {
	return "revoked_token:" + tokenID
}

// Revoke denies tokenID until expiresAt. Tokens that already expired are
// ignored.
func (d *DenyList) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if d == nil || d.rdb == nil {
		return ErrUnavailable
	}
	ttl := time.Until(expiresAt)
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	if err := d.rdb.Set(ctx, key(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (d *DenyList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if d == nil || d.rdb == nil || tokenID == "" {
		return false, nil
	}
	n, err := d.rdb.Exists(ctx, key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return n > 0, nil
}
