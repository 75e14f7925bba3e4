package notifyserver

import (
	"encoding/json"
	"errors"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"filmtrack/internal/config"
	"filmtrack/internal/middleware"
	ws "filmtrack/internal/websocket"
)

// WebSocketHandler 负责处理通知 WebSocket 的连接请求。
type WebSocketHandler struct {
	hub      *ws.Hub
	authn    *middleware.Authenticator
	upgrader *gorillaws.Upgrader
	wsCfg    config.WebSocketConfig
	logger   *zap.Logger
}

// NewWebSocketHandler 创建一个新的 WebSocketHandler 实例。
func NewWebSocketHandler(hub *ws.Hub, authn *middleware.Authenticator, cfg config.Config, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		authn:    authn,
		upgrader: ws.NewUpgrader(cfg.APIServer.CORS.AllowedOrigins),
		wsCfg:    cfg.WebSocket,
		logger:   logger.Named("ws"),
	}
}

// ServeWS 校验会话后把 HTTP 连接升级为 WebSocket。
// 浏览器无法为 WebSocket 设置请求头，所以这里也接受 token 查询参数。
func (h *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	claims, err := h.authn.Authenticate(r, true)
	if err != nil {
		if !errors.Is(err, middleware.ErrNoToken) {
			h.logger.Debug("rejecting websocket session", zap.Error(err))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Unauthorized"})
		return
	}

	h.logger.Debug("websocket connect", zap.Uint("userId", claims.UserID))
	ws.ServeWs(h.hub, h.upgrader, claims.UserID, h.wsCfg, w, r)
}
