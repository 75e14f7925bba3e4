package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"filmtrack/internal/models"
	"filmtrack/internal/storage"
	"filmtrack/internal/validation"
)

// CreateFilmInput 是添加影片到个人片单的请求体。
type CreateFilmInput struct {
	TmdbID    int               `json:"tmdbId" validate:"required"`
	Title     string            `json:"title" validate:"required"`
	PosterURL string            `json:"posterUrl" validate:"required"`
	Year      int               `json:"year" validate:"required"`
	Status    models.FilmStatus `json:"status" validate:"omitempty,oneof=plan-to-watch watching watched"`
	Rating    *int              `json:"rating" validate:"omitempty,min=0,max=5"`
	Review    *string           `json:"review"`
	WatchedAt *time.Time        `json:"watchedAt"`
}

// UpdateFilmInput 是部分更新的请求体，只有出现的字段会被修改。
// Review 和 WatchedAt 可以显式置为 null 来清空。
type UpdateFilmInput struct {
	Status    *models.FilmStatus         `json:"status"`
	Rating    *int                       `json:"rating"`
	Review    models.Optional[string]    `json:"review"`
	WatchedAt models.Optional[time.Time] `json:"watchedAt"`
}

// FilmService 定义了个人片单的业务操作。
type FilmService interface {
	ListOwnFilms(ctx context.Context, userID uint) ([]models.Film, error)
	ListPublicFilms(ctx context.Context, userID uint) ([]models.PublicFilm, error)
	// GetFilm 不存在时返回 (nil, nil)。
	GetFilm(ctx context.Context, id uint) (*models.Film, error)
	GetOwnFilm(ctx context.Context, id, userID uint) (*models.Film, error)
	CreateFilm(ctx context.Context, userID uint, input CreateFilmInput) (*models.Film, error)
	UpdateFilm(ctx context.Context, id, userID uint, input UpdateFilmInput) (*models.Film, error)
	DeleteFilm(ctx context.Context, id, userID uint) error
}

type filmService struct {
	filmRepo  storage.FilmRepository
	validator *validation.Validator
	logger    *zap.Logger
}

// NewFilmService 创建一个新的 FilmService 实例。
func NewFilmService(filmRepo storage.FilmRepository, v *validation.Validator, logger *zap.Logger) FilmService {
	return &filmService{
		filmRepo:  filmRepo,
		validator: v,
		logger:    logger.Named("film_service"),
	}
}

func (s *filmService) ListOwnFilms(ctx context.Context, userID uint) ([]models.Film, error) {
	films, err := s.filmRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, wrapInternal("Failed to fetch films", err)
	}
	return films, nil
}

func (s *filmService) ListPublicFilms(ctx context.Context, userID uint) ([]models.PublicFilm, error) {
	films, err := s.filmRepo.ListPublicByUser(ctx, userID)
	if err != nil {
		return nil, wrapInternal("Failed to fetch user films", err)
	}
	return films, nil
}

func (s *filmService) GetFilm(ctx context.Context, id uint) (*models.Film, error) {
	film, err := s.filmRepo.GetByID(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, nil
		}
		return nil, wrapInternal("Failed to fetch film", err)
	}
	return film, nil
}

// GetOwnFilm 只允许片单所有者读取单条记录。
func (s *filmService) GetOwnFilm(ctx context.Context, id, userID uint) (*models.Film, error) {
	film, err := s.GetFilm(ctx, id)
	if err != nil {
		return nil, err
	}
	if film == nil {
		return nil, ErrFilmNotFound
	}
	if film.UserID != userID {
		return nil, ErrFilmForbidden
	}
	return film, nil
}

func (s *filmService) CreateFilm(ctx context.Context, userID uint, input CreateFilmInput) (*models.Film, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.PosterURL = strings.TrimSpace(input.PosterURL)
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	film := &models.Film{
		UserID:    userID,
		TmdbID:    input.TmdbID,
		Title:     input.Title,
		PosterURL: input.PosterURL,
		Year:      input.Year,
		Status:    models.FilmStatusPlanToWatch,
		Rating:    0,
		Review:    input.Review,
		WatchedAt: input.WatchedAt,
	}
	if input.Status != "" {
		film.Status = input.Status
	}
	if input.Rating != nil {
		film.Rating = *input.Rating
	}

	if err := s.filmRepo.Create(ctx, film); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, ErrDuplicateFilm
		}
		return nil, wrapInternal("Failed to create film", err)
	}

	s.logger.Debug("film created",
		zap.Uint("film_id", film.ID),
		zap.Uint("user_id", userID),
		zap.Int("tmdb_id", film.TmdbID))
	return film, nil
}

func (s *filmService) UpdateFilm(ctx context.Context, id, userID uint, input UpdateFilmInput) (*models.Film, error) {
	updates, err := s.buildUpdates(input)
	if err != nil {
		return nil, err
	}

	matched, err := s.filmRepo.UpdateOwned(ctx, id, userID, updates)
	if err != nil {
		return nil, wrapInternal("Failed to update film", err)
	}
	if !matched {
		return nil, s.classifyMiss(ctx, id)
	}

	film, err := s.filmRepo.GetByID(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			// 并发删除
			return nil, ErrFilmNotFound
		}
		return nil, wrapInternal("Failed to fetch film", err)
	}
	return film, nil
}

func (s *filmService) buildUpdates(input UpdateFilmInput) (map[string]any, error) {
	updates := map[string]any{}

	if input.Status != nil {
		if err := s.validator.Var("status", string(*input.Status), "oneof=plan-to-watch watching watched"); err != nil {
			return nil, err
		}
		updates["status"] = *input.Status
	}
	if input.Rating != nil {
		if err := s.validator.Var("rating", *input.Rating, "min=0,max=5"); err != nil {
			return nil, err
		}
		updates["rating"] = *input.Rating
	}
	if input.Review.Set {
		updates["review"] = nullable(input.Review)
	}
	if input.WatchedAt.Set {
		updates["watched_at"] = nullable(input.WatchedAt)
	}
	return updates, nil
}

// nullable 返回 nil（写入 NULL）或具体值。
func nullable[T any](o models.Optional[T]) any {
	if !o.Valid {
		return nil
	}
	return o.Value
}

func (s *filmService) DeleteFilm(ctx context.Context, id, userID uint) error {
	matched, err := s.filmRepo.DeleteOwned(ctx, id, userID)
	if err != nil {
		return wrapInternal("Failed to delete film", err)
	}
	if !matched {
		return s.classifyMiss(ctx, id)
	}
	s.logger.Debug("film deleted", zap.Uint("film_id", id), zap.Uint("user_id", userID))
	return nil
}

// classifyMiss 在条件写入未命中后区分记录不存在和无权限。
func (s *filmService) classifyMiss(ctx context.Context, id uint) error {
	if _, err := s.filmRepo.GetByID(ctx, id); err != nil {
		if storage.IsNotFound(err) {
			return ErrFilmNotFound
		}
		return wrapInternal("Failed to fetch film", err)
	}
	return ErrFilmForbidden
}
