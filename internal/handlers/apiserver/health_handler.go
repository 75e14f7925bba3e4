package apiserver

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthHandler 报告进程和数据库是否可用。
type HealthHandler struct {
	db      *gorm.DB
	version string
	logger  *zap.Logger
}

func NewHealthHandler(db *gorm.DB, version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, version: version, logger: logger.Named("health")}
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version,omitempty"`
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := healthStatus{Status: "ok", Database: "ok", Version: h.version}
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		h.logger.Warn("database ping failed", zap.Error(err))
		status.Status, status.Database = "degraded", "unreachable"
		writeJSON(w, http.StatusServiceUnavailable, SuccessResponse{Success: false, Data: status})
		return
	}
	writeJSONResponse(w, http.StatusOK, status)
}
