package storage

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"filmtrack/internal/models"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	// Update 只更新 updates 中给出的列。
	Update(ctx context.Context, id uint, updates map[string]any) error
	SearchProfiles(ctx context.Context, query string, excludeUserID uint, limit int) ([]models.UserProfile, error)
	GetProfilesByIDs(ctx context.Context, userIDs []uint) ([]models.UserProfile, error)
}

// gormUserRepository implements UserRepository using GORM.
type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based UserRepository.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create 创建新用户。邮箱重复时返回 ErrDuplicateKey。
func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	return translateWriteError(r.db.WithContext(ctx).Create(user).Error)
}

// GetByID 按 ID 查询用户，不存在时返回 gorm.ErrRecordNotFound。
func (r *gormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail 按邮箱查询用户。
func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Update 更新用户的指定字段。
func (r *gormUserRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translateWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchProfiles 在 name 和 email 上进行大小写不敏感的模糊匹配，并排除当前用户自己。
func (r *gormUserRepository) SearchProfiles(ctx context.Context, query string, excludeUserID uint, limit int) ([]models.UserProfile, error) {
	profiles := []models.UserProfile{}
	searchTerm := "%" + escapeLike(strings.ToLower(query)) + "%"

	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select(models.UserProfileColumns).
		Where("(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!') AND id <> ?", searchTerm, searchTerm, excludeUserID).
		Order("name ASC, id ASC").
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetProfilesByIDs 批量查询用户公开信息，缺失的 ID 直接忽略。
func (r *gormUserRepository) GetProfilesByIDs(ctx context.Context, userIDs []uint) ([]models.UserProfile, error) {
	profiles := []models.UserProfile{}
	if len(userIDs) == 0 {
		return profiles, nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select(models.UserProfileColumns).
		Where("id IN ?", userIDs).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
