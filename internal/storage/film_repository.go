package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"filmtrack/internal/models"
)

// FilmRepository defines the interface for film list data operations.
//
// UpdateOwned and DeleteOwned apply the ownership check inside the statement;
// they report false when no row matched id AND userID.
type FilmRepository interface {
	Create(ctx context.Context, film *models.Film) error
	GetByID(ctx context.Context, id uint) (*models.Film, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Film, error)
	ListPublicByUser(ctx context.Context, userID uint) ([]models.PublicFilm, error)
	UpdateOwned(ctx context.Context, id, userID uint, updates map[string]any) (bool, error)
	DeleteOwned(ctx context.Context, id, userID uint) (bool, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type gormFilmRepository struct {
	db *gorm.DB
}

// NewGormFilmRepository creates a new GORM-based FilmRepository.
func NewGormFilmRepository(db *gorm.DB) FilmRepository {
	return &gormFilmRepository{db: db}
}

// Create inserts a film. A second copy of the same tmdbId for the same user
// returns ErrDuplicateKey.
func (r *gormFilmRepository) Create(ctx context.Context, film *models.Film) error {
	return translateWriteError(r.db.WithContext(ctx).Create(film).Error)
}

func (r *gormFilmRepository) GetByID(ctx context.Context, id uint) (*models.Film, error) {
	var film models.Film
	if err := r.db.WithContext(ctx).First(&film, id).Error; err != nil {
		return nil, err
	}
	return &film, nil
}

func (r *gormFilmRepository) ListByUser(ctx context.Context, userID uint) ([]models.Film, error) {
	films := []models.Film{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&films).Error
	if err != nil {
		return nil, err
	}
	return films, nil
}

func (r *gormFilmRepository) ListPublicByUser(ctx context.Context, userID uint) ([]models.PublicFilm, error) {
	films := []models.PublicFilm{}
	err := r.db.WithContext(ctx).
		Model(&models.Film{}).
		Select(models.PublicFilmColumns).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&films).Error
	if err != nil {
		return nil, err
	}
	return films, nil
}

func (r *gormFilmRepository) UpdateOwned(ctx context.Context, id, userID uint, updates map[string]any) (bool, error) {
	values := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		values[k] = v
	}
	// updated_at always changes, so a matched row is always an affected row
	values["updated_at"] = time.Now()

	res := r.db.WithContext(ctx).
		Model(&models.Film{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(values)
	if res.Error != nil {
		return false, translateWriteError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *gormFilmRepository) DeleteOwned(ctx context.Context, id, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Film{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormFilmRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Film{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
