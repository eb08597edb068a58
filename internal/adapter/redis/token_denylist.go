package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

// TokenDenylist stores revoked JWT IDs with a TTL equal to the token's
// remaining lifetime, so entries vanish once the token would expire anyway.
type TokenDenylist struct {
	rdb   goredis.Cmdable
	clock clockwork.Clock
}

func NewTokenDenylist(rdb goredis.Cmdable, clock clockwork.Clock) *TokenDenylist {
	return &TokenDenylist{rdb: rdb, clock: clock}
}

func denylistKey(tokenID string) string {
	return "denylist:jti:" + tokenID
}

func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(d.clock.Now())
	if ttl <= 0 {
		return nil
	}
	if err := d.rdb.Set(ctx, denylistKey(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.rdb.Exists(ctx, denylistKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token denylist: %w", err)
	}
	return n > 0, nil
}
