package models

import "time"

// FilmStatus is the watch state of a film in a user's list.
type FilmStatus string

const (
	FilmStatusPlanToWatch FilmStatus = "plan-to-watch"
	FilmStatusWatching    FilmStatus = "watching"
	FilmStatusWatched     FilmStatus = "watched"
)

// Valid reports whether s is one of the known statuses.
func (s FilmStatus) Valid() bool {
	switch s {
	case FilmStatusPlanToWatch, FilmStatusWatching, FilmStatusWatched:
		return true
	}
	return false
}

const (
	MinRating = 0
	MaxRating = 5
)

// Film is a catalog title saved in a user's personal list.
// A user holds each catalog title at most once.
type Film struct {
	BaseModel
	UserID    uint       `gorm:"not null;uniqueIndex:idx_film_user_tmdb" json:"userId"`
	TmdbID    int        `gorm:"not null;uniqueIndex:idx_film_user_tmdb" json:"tmdbId"`
	Title     string     `gorm:"type:varchar(255);not null" json:"title"`
	PosterURL string     `gorm:"type:varchar(512);not null" json:"posterUrl"`
	Year      int        `gorm:"not null" json:"year"`
	Status    FilmStatus `gorm:"type:varchar(20);not null;default:'plan-to-watch'" json:"status"`
	Rating    int        `gorm:"not null;default:0" json:"rating"`
	Review    *string    `gorm:"type:text" json:"review"`
	WatchedAt *time.Time `json:"watchedAt"`
}

// TableName 指定 Film 模型的表名。
func (Film) TableName() string {
	return "films"
}

// PublicFilm is the projection of a film shown on another user's profile.
type PublicFilm struct {
	ID        uint       `json:"id"`
	TmdbID    int        `json:"tmdbId"`
	Title     string     `json:"title"`
	PosterURL string     `json:"posterUrl"`
	Year      int        `json:"year"`
	Status    FilmStatus `json:"status"`
	Rating    int        `json:"rating"`
	Review    *string    `json:"review"`
	WatchedAt *time.Time `json:"watchedAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

// PublicFilmColumns 是查询 PublicFilm 时选择的列。
var PublicFilmColumns = []string{
	"id", "tmdb_id", "title", "poster_url", "year",
	"status", "rating", "review", "watched_at", "created_at",
}
