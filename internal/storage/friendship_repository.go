package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"filmtrack/internal/models"
)

// FriendshipRepository defines the interface for friendship data operations.
//
// The *AsReceiver / *AsParty methods check the acting user inside the write
// and report false when no row matched.
type FriendshipRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	GetByID(ctx context.Context, id uint) (*models.Friendship, error)
	FindBetween(ctx context.Context, userA, userB uint) (*models.Friendship, error)
	AcceptAsReceiver(ctx context.Context, id, receiverID uint) (bool, error)
	DeleteAsReceiver(ctx context.Context, id, receiverID uint) (bool, error)
	DeleteAsParty(ctx context.Context, id, userID uint) (bool, error)
	ListAccepted(ctx context.Context, userID uint) ([]models.Friendship, error)
	ListPendingReceived(ctx context.Context, userID uint) ([]models.Friendship, error)
	ListPendingSent(ctx context.Context, userID uint) ([]models.Friendship, error)
}

type gormFriendshipRepository struct {
	db *gorm.DB
}

// NewGormFriendshipRepository creates a new GormFriendshipRepository.
func NewGormFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &gormFriendshipRepository{db: db}
}

// Create inserts a friendship. The pair columns are filled by the model's
// BeforeCreate hook; any existing row for the same unordered pair makes the
// insert fail with ErrDuplicateKey.
func (r *gormFriendshipRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	return translateWriteError(r.db.WithContext(ctx).Create(friendship).Error)
}

func (r *gormFriendshipRepository) GetByID(ctx context.Context, id uint) (*models.Friendship, error) {
	var f models.Friendship
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// FindBetween returns the row for {userA, userB} in either direction.
func (r *gormFriendshipRepository) FindBetween(ctx context.Context, userA, userB uint) (*models.Friendship, error) {
	low, high := userA, userB
	if low > high {
		low, high = high, low
	}
	var f models.Friendship
	err := r.db.WithContext(ctx).
		Where("pair_low = ? AND pair_high = ?", low, high).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *gormFriendshipRepository) AcceptAsReceiver(ctx context.Context, id, receiverID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("id = ? AND receiver_id = ?", id, receiverID).
		Updates(map[string]any{
			"status":     models.FriendshipStatusAccepted,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormFriendshipRepository) DeleteAsReceiver(ctx context.Context, id, receiverID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND receiver_id = ?", id, receiverID).
		Delete(&models.Friendship{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormFriendshipRepository) DeleteAsParty(ctx context.Context, id, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND (sender_id = ? OR receiver_id = ?)", id, userID, userID).
		Delete(&models.Friendship{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListAccepted returns accepted friendships where userID is either party.
func (r *gormFriendshipRepository) ListAccepted(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return r.list(ctx, "status = ? AND (sender_id = ? OR receiver_id = ?)",
		models.FriendshipStatusAccepted, userID, userID)
}

// ListPendingReceived returns pending requests addressed to userID, newest first.
func (r *gormFriendshipRepository) ListPendingReceived(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return r.list(ctx, "status = ? AND receiver_id = ?", models.FriendshipStatusPending, userID)
}

// ListPendingSent returns pending requests sent by userID, newest first.
func (r *gormFriendshipRepository) ListPendingSent(ctx context.Context, userID uint) ([]models.Friendship, error) {
	return r.list(ctx, "status = ? AND sender_id = ?", models.FriendshipStatusPending, userID)
}

func (r *gormFriendshipRepository) list(ctx context.Context, query string, args ...any) ([]models.Friendship, error) {
	friendships := []models.Friendship{}
	err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("created_at DESC, id DESC").
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}
	return friendships, nil
}
