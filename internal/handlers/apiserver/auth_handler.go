package apiserver

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"filmtrack/internal/config"
	"filmtrack/internal/errs"
	"filmtrack/internal/middleware"
	"filmtrack/internal/models"
	"filmtrack/internal/services"
)

// AuthHandler 封装了认证相关的 HTTP 处理器方法。
type AuthHandler struct {
	authService services.AuthService
	cfg         config.AuthConfig
	logger      *zap.Logger
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。
func NewAuthHandler(authService services.AuthService, cfg config.AuthConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg, logger: logger.Named("auth_handler")}
}

// SessionResponse 是 get-session 的返回数据，未登录时 User 为 null。
type SessionResponse struct {
	User      *models.User `json:"user"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
}

// SignUp 处理 POST /api/auth/sign-up/email。
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req services.SignUpInput
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.logger, err, "Invalid request body")
		return
	}

	session, err := h.authService.SignUp(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to sign up")
		return
	}
	h.setSessionCookie(w, session)
	writeJSONResponse(w, http.StatusCreated, session)
}

// SignIn 处理 POST /api/auth/sign-in/email。
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req services.SignInInput
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.logger, err, "Invalid request body")
		return
	}

	session, err := h.authService.SignIn(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to sign in")
		return
	}
	h.setSessionCookie(w, session)
	writeJSONResponse(w, http.StatusOK, session)
}

// SignOut 处理用户登出请求，将当前 Token 加入黑名单并清除 Cookie。
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		writeJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.authService.SignOut(r.Context(), claims); err != nil {
		writeServiceError(w, h.logger, err, "Failed to sign out")
		return
	}
	h.clearSessionCookie(w)
	writeJSONResponse(w, http.StatusOK, MessageResponse{Message: "Signed out"})
}

// GetSession 处理 GET /api/auth/get-session。
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		writeJSONResponse(w, http.StatusOK, SessionResponse{})
		return
	}

	user, err := h.authService.GetSessionUser(r.Context(), claims.UserID)
	if err != nil {
		if errs.KindOf(err) == errs.KindNotFound {
			// 用户已被删除，会话作废
			h.clearSessionCookie(w)
			writeJSONResponse(w, http.StatusOK, SessionResponse{})
			return
		}
		writeServiceError(w, h.logger, err, "Failed to fetch session")
		return
	}

	resp := SessionResponse{User: user}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		resp.ExpiresAt = &exp
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *services.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    session.Token,
		Path:     "/",
		Domain:   h.cfg.CookieDomain,
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cfg.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
