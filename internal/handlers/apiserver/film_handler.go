package apiserver

import (
	"net/http"

	"go.uber.org/zap"

	"filmtrack/internal/middleware"
	"filmtrack/internal/services"
)

// FilmHandler 封装了个人片单相关的 HTTP 处理器方法。
type FilmHandler struct {
	filmService services.FilmService
	logger      *zap.Logger
}

// NewFilmHandler 创建一个新的 FilmHandler 实例。
func NewFilmHandler(filmService services.FilmService, logger *zap.Logger) *FilmHandler {
	return &FilmHandler{filmService: filmService, logger: logger.Named("film_handler")}
}

// FilmDeletedResponse 是删除影片成功后的返回数据。
type FilmDeletedResponse struct {
	Message string `json:"message"`
}

// currentUserID 读取已认证的用户 ID，缺失时写出 401。
func currentUserID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
	}
	return userID, ok
}

// ListOwnFilmsHandler 处理 GET /api/films。
func (h *FilmHandler) ListOwnFilmsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	films, err := h.filmService.ListOwnFilms(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch films")
		return
	}
	writeJSONResponse(w, http.StatusOK, films)
}

// GetFilmHandler 处理 GET /api/films/{id}，只有所有者可以读取。
func (h *FilmHandler) GetFilmHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, h.logger, err, "Invalid film ID")
		return
	}
	film, err := h.filmService.GetOwnFilm(r.Context(), id, userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch film")
		return
	}
	writeJSONResponse(w, http.StatusOK, film)
}

// CreateFilmHandler 处理 POST /api/films。
func (h *FilmHandler) CreateFilmHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req services.CreateFilmInput
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.logger, err, "Invalid request body")
		return
	}
	film, err := h.filmService.CreateFilm(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to create film")
		return
	}
	writeJSONResponse(w, http.StatusCreated, film)
}

// UpdateFilmHandler 处理 PUT /api/films/{id}，只更新请求体中出现的字段。
func (h *FilmHandler) UpdateFilmHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, h.logger, err, "Invalid film ID")
		return
	}
	var req services.UpdateFilmInput
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.logger, err, "Invalid request body")
		return
	}
	film, err := h.filmService.UpdateFilm(r.Context(), id, userID, req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to update film")
		return
	}
	writeJSONResponse(w, http.StatusOK, film)
}

// DeleteFilmHandler 处理 DELETE /api/films/{id}。
func (h *FilmHandler) DeleteFilmHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, h.logger, err, "Invalid film ID")
		return
	}
	if err := h.filmService.DeleteFilm(r.Context(), id, userID); err != nil {
		writeServiceError(w, h.logger, err, "Failed to delete film")
		return
	}
	writeJSONResponse(w, http.StatusOK, FilmDeletedResponse{Message: "Film deleted successfully"})
}

// ListUserFilmsHandler 处理 GET /api/users/{id}/films，公开接口。
func (h *FilmHandler) ListUserFilmsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, h.logger, err, "Invalid user ID")
		return
	}
	films, err := h.filmService.ListPublicFilms(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch user films")
		return
	}
	writeJSONResponse(w, http.StatusOK, films)
}
