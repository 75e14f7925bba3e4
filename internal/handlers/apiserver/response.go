package apiserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"filmtrack/internal/errs"
)

// SuccessResponse 是所有成功响应的外层结构。
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorResponse 是 API 错误响应的通用结构体。
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeJSONResponse 将 data 包装为 {"success":true,"data":...} 写出。
func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, SuccessResponse{Success: true, Data: data})
}

// writeJSONError 是一个辅助函数，用于发送 JSON 格式的错误响应。
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// 头部已发送，编码失败时无法再改写响应
	_ = json.NewEncoder(w).Encode(body)
}

// statusForKind 将业务错误类型映射为 HTTP 状态码。
func statusForKind(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation, errs.KindDuplicate, errs.KindSelfRequest:
		return http.StatusBadRequest
	case errs.KindUnauthenticated:
		return http.StatusUnauthorized
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError 根据服务层返回的错误写出响应。内部错误只返回 fallback 消息。
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	kind := errs.KindOf(err)
	status := statusForKind(kind)
	if status >= http.StatusInternalServerError {
		logger.Error(fallback, zap.Error(err))
		writeJSONError(w, fallback, status)
		return
	}
	writeJSONError(w, errs.Message(err, fallback), status)
}

// decodeJSON 解析请求体，空请求体和格式错误都返回校验错误。
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.Validation("Request body is required")
		}
		return errs.Wrap(errs.KindValidation, "Invalid request body", err)
	}
	return nil
}

// pathID 读取路径参数中的数字 ID。路由已用正则约束，这里只防御溢出。
func pathID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errs.Newf(errs.KindValidation, "Invalid %s", name)
	}
	return uint(id), nil
}
