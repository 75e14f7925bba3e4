package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"filmtrack/internal/models"
	"filmtrack/internal/storage"
	"filmtrack/internal/validation"
)

// UpdateUserInput 是更新个人资料的请求体。未出现的字段保持不变；
// bio 和 image 可以显式置为 null 来清空。
type UpdateUserInput struct {
	Name  *string                 `json:"name"`
	Email *string                 `json:"email"`
	Bio   models.Optional[string] `json:"bio"`
	Image models.Optional[string] `json:"image"`
}

// UserService 定义了用户资料相关服务的接口。
type UserService interface {
	GetUserProfile(ctx context.Context, userID uint) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID, actingUserID uint, input UpdateUserInput) (*models.User, error)
}

// userService 是 UserService 的实现。
type userService struct {
	userRepo  storage.UserRepository
	validator *validation.Validator
	logger    *zap.Logger
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo storage.UserRepository, v *validation.Validator, logger *zap.Logger) UserService {
	return &userService{
		userRepo:  userRepo,
		validator: v,
		logger:    logger.Named("user_service"),
	}
}

// GetUserProfile 获取用户公开的个人资料。
func (s *userService) GetUserProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, wrapInternal("Failed to fetch user", err)
	}
	return user, nil
}

// UpdateUserProfile 只允许用户修改自己的资料。
func (s *userService) UpdateUserProfile(ctx context.Context, userID, actingUserID uint, input UpdateUserInput) (*models.User, error) {
	if userID != actingUserID {
		return nil, ErrProfileForbidden
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if err := s.validator.Var("name", name, "required,min=2,max=100"); err != nil {
			return nil, err
		}
		updates["name"] = name
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if err := s.validator.Var("email", email, "required,email"); err != nil {
			return nil, err
		}
		updates["email"] = email
	}
	if input.Bio.Set {
		updates["bio"] = nullable(input.Bio)
	}
	if input.Image.Set {
		updates["image"] = nullable(input.Image)
	}

	if err := s.userRepo.Update(ctx, userID, updates); err != nil {
		switch {
		case errors.Is(err, storage.ErrDuplicateKey):
			return nil, ErrEmailTaken
		case storage.IsNotFound(err):
			return nil, ErrUserNotFound
		}
		return nil, wrapInternal("Failed to update user", err)
	}

	s.logger.Debug("user profile updated", zap.Uint("user_id", userID), zap.Int("fields", len(updates)))
	return s.GetUserProfile(ctx, userID)
}
