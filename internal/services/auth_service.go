package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"filmtrack/internal/auth"
	"filmtrack/internal/config"
	"filmtrack/internal/models"
	"filmtrack/internal/storage"
	"filmtrack/internal/validation"
)

// SignUpInput 是邮箱注册的请求体。
type SignUpInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// SignInInput 是邮箱登录的请求体。
type SignInInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session 是一次成功登录的结果。
type Session struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// AuthService 定义了用户认证服务的接口。
type AuthService interface {
	SignUp(ctx context.Context, input SignUpInput) (*Session, error)
	SignIn(ctx context.Context, input SignInInput) (*Session, error)
	SignOut(ctx context.Context, claims *auth.Claims) error
	GetSessionUser(ctx context.Context, userID uint) (*models.User, error)
}

// authService 是 AuthService 的实现。
type authService struct {
	userRepo  storage.UserRepository
	blacklist auth.TokenBlacklist
	validator *validation.Validator
	cfg       config.AuthConfig
	logger    *zap.Logger
}

// NewAuthService 创建一个新的 AuthService 实例。blacklist 为 nil 时 SignOut 只清除 Cookie。
func NewAuthService(
	userRepo storage.UserRepository,
	blacklist auth.TokenBlacklist,
	v *validation.Validator,
	cfg config.AuthConfig,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		blacklist: blacklist,
		validator: v,
		cfg:       cfg,
		logger:    logger.Named("auth_service"),
	}
}

// SignUp 处理用户注册逻辑。
func (s *authService) SignUp(ctx context.Context, input SignUpInput) (*Session, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	// 检查邮箱是否存在，并发注册由唯一索引兜底
	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, ErrUserExists
	} else if !storage.IsNotFound(err) {
		return nil, wrapInternal("Failed to create user", err)
	}

	hashedPassword, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, wrapInternal("Failed to create user", err)
	}

	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, ErrUserExists
		}
		return nil, wrapInternal("Failed to create user", err)
	}

	s.logger.Info("user signed up", zap.Uint("user_id", user.ID))
	return s.newSession(user)
}

// SignIn 处理用户登录逻辑。邮箱不存在和密码错误返回同一个错误。
func (s *authService) SignIn(ctx context.Context, input SignInInput) (*Session, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, wrapInternal("Failed to sign in", err)
	}
	if !auth.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.newSession(user)
}

// SignOut 将 Token 的 JTI 加入黑名单直到其过期。
func (s *authService) SignOut(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ID == "" {
		return nil
	}
	expiresAt := time.Now().Add(s.cfg.JWTExpiry)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, expiresAt); err != nil {
		return wrapInternal("Failed to sign out", err)
	}
	s.logger.Debug("session revoked", zap.Uint("user_id", claims.UserID), zap.String("jti", claims.ID))
	return nil
}

// GetSessionUser 返回会话对应的用户，用户已被删除时返回 ErrUserNotFound。
func (s *authService) GetSessionUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, wrapInternal("Failed to fetch session", err)
	}
	return user, nil
}

func (s *authService) newSession(user *models.User) (*Session, error) {
	token, claims, err := auth.GenerateToken(user.ID, user.Email, s.cfg)
	if err != nil {
		return nil, wrapInternal("Failed to create session", err)
	}
	return &Session{User: user, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}
