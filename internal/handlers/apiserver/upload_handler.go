package apiserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"filmtrack/internal/apptypes"
	"filmtrack/internal/config"
)

const (
	defaultMaxUploadSize = 5 << 20 // 5 MB
	multipartMemory      = 1 << 20
)

// UploadHandler 封装了文件上传相关的 HTTP 处理器方法。
type UploadHandler struct {
	storageService apptypes.StorageService
	maxUploadSize  int64
	logger         *zap.Logger
}

// NewUploadHandler 创建一个新的 UploadHandler 实例。
func NewUploadHandler(storageService apptypes.StorageService, cfg config.StorageConfig, logger *zap.Logger) *UploadHandler {
	maxUploadSize := cfg.MaxFileSizeMB << 20
	if maxUploadSize <= 0 {
		maxUploadSize = defaultMaxUploadSize
	}
	return &UploadHandler{
		storageService: storageService,
		maxUploadSize:  maxUploadSize,
		logger:         logger.Named("upload_handler"),
	}
}

// UploadFileHandler 处理头像上传请求，只接受图片。
func (h *UploadHandler) UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	tooLarge := fmt.Sprintf("File too large, maximum is %d MB", h.maxUploadSize>>20)

	// 1. 限制请求体大小，额外留出 multipart 头部的空间
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartMemory)

	// 2. 解析 multipart form
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			writeJSONError(w, tooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		writeJSONError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	// 3. 获取文件, "file" 是表单中文件的 key
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeJSONError(w, "Missing 'file' field", http.StatusBadRequest)
		} else {
			writeJSONError(w, "Invalid file", http.StatusBadRequest)
		}
		return
	}
	defer file.Close()

	// 4. 检查文件类型和大小
	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		writeJSONError(w, "Only image uploads are allowed", http.StatusBadRequest)
		return
	}
	if header.Size > h.maxUploadSize {
		writeJSONError(w, tooLarge, http.StatusRequestEntityTooLarge)
		return
	}

	// 5. 调用存储服务上传文件
	fileInfo, err := h.storageService.UploadFile(r.Context(), file, header.Size, header.Filename, mimeType)
	if err != nil {
		h.logger.Error("store upload failed", zap.String("file", header.Filename), zap.Error(err))
		writeJSONError(w, "Failed to store file", http.StatusInternalServerError)
		return
	}

	h.logger.Debug("file uploaded",
		zap.String("url", fileInfo.URL),
		zap.Int64("size", fileInfo.Size),
		zap.String("mime", mimeType))
	writeJSONResponse(w, http.StatusCreated, fileInfo)
}
