package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"filmtrack/internal/auth"
	"filmtrack/internal/config"
)

// contextKey 是用于在 context.Context 中存储值的自定义类型，以避免键冲突。
type contextKey string

// UserIDKey 是用于在上下文中存储用户ID的键。
const UserIDKey contextKey = "userID"

// ClaimsKey 是用于在上下文中存储会话声明的键。
const ClaimsKey contextKey = "claims"

// ErrNoToken 表示请求中没有携带会话 Token。
var ErrNoToken = errors.New("request carries no session token")

// Authenticator 校验会话 Token 并将用户信息写入请求上下文。
type Authenticator struct {
	secret     string
	cookieName string
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthenticator 创建 Authenticator。blacklist 可以为 nil。
func NewAuthenticator(cfg config.AuthConfig, blacklist auth.TokenBlacklist, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		secret:     cfg.JWTSecretKey,
		cookieName: cfg.CookieName,
		blacklist:  blacklist,
		logger:     logger.Named("auth"),
	}
}

// Authenticate 从 Bearer 头、Cookie（以及 allowQuery 时的 token 查询参数）中读取并校验 Token。
func (a *Authenticator) Authenticate(r *http.Request, allowQuery bool) (*auth.Claims, error) {
	token := auth.TokenFromRequest(r, a.cookieName, allowQuery)
	if token == "" {
		return nil, ErrNoToken
	}
	return auth.ValidateToken(r.Context(), token, a.secret, a.blacklist)
}

// RequireAuth 拒绝没有有效会话的请求。
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.Authenticate(r, false)
		if err != nil {
			if !errors.Is(err, ErrNoToken) {
				a.logger.Debug("rejecting session token", zap.String("path", r.URL.Path), zap.Error(err))
			}
			writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// OptionalAuth 在 Token 有效时写入用户信息，否则按匿名请求继续处理。
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, err := a.Authenticate(r, false); err == nil {
			r = r.WithContext(WithClaims(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	})
}

// WithClaims 返回携带会话声明的上下文。
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetUserIDFromContext 从上下文中获取用户ID。
// 如果用户ID不存在或类型不正确，返回0和false。
func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	userID, ok := ctx.Value(UserIDKey).(uint)
	return userID, ok
}

// GetClaimsFromContext 从上下文中获取会话声明。
func GetClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims, ok
}
