package apiserver

import (
	"net/http"

	"go.uber.org/zap"

	"filmtrack/internal/services"
)

// UserHandler 封装了用户相关的 HTTP 处理器方法。
type UserHandler struct {
	userService services.UserService
	logger      *zap.Logger
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService services.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger.Named("user_handler")}
}

// GetUserProfileHandler 处理获取指定用户公开信息的请求。
func (h *UserHandler) GetUserProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, h.logger, err, "Invalid user ID")
		return
	}

	user, err := h.userService.GetUserProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to fetch user")
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}

// UpdateUserProfileHandler 处理更新用户信息的请求，只能修改自己的资料。
func (h *UserHandler) UpdateUserProfileHandler(w http.ResponseWriter, r *http.Request) {
	actingUserID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	userID, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, h.logger, err, "Invalid user ID")
		return
	}

	var req services.UpdateUserInput
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.logger, err, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateUserProfile(r.Context(), userID, actingUserID, req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to update user")
		return
	}
	writeJSONResponse(w, http.StatusOK, user)
}
