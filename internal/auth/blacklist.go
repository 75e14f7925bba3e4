package auth

import (
	"context"
	"time"
)

// TokenBlacklist 记录已登出的会话。实现只需要保留到 until 为止，之后 JWT 自身已过期。
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
