package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"filmtrack/internal/auth"
)

const revokedKeyPrefix = "filmtrack:revoked:"

// tokenBlacklist 用带 TTL 的键记录已登出的 JTI，键在 Token 过期时自动清除。
type tokenBlacklist struct {
	client redis.Cmdable
}

// NewRedisTokenBlacklist 返回基于 Redis 的 auth.TokenBlacklist。
func NewRedisTokenBlacklist(client redis.Cmdable) auth.TokenBlacklist {
	return &tokenBlacklist{client: client}
}

func (b *tokenBlacklist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		// 已过期的 Token 会被 JWT 校验本身拒绝
		return nil
	}
	if err := b.client.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke jti %s: %w", jti, err)
	}
	return nil
}

func (b *tokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked jti %s: %w", jti, err)
	}
	return n > 0, nil
}
