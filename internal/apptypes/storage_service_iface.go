package apptypes

import (
	"context"
	"io"
)

// StorageService 定义了文件存储操作的接口。
// 放在 apptypes 中以避免 storage 与 handlers 之间的循环依赖。
type StorageService interface {
	// UploadFile 将 reader 中的内容写入存储系统并返回文件信息 (包括访问 URL)。
	UploadFile(ctx context.Context, reader io.Reader, fileSize int64, fileName string, mimeType string) (*FileInfo, error)

	// DeleteFile 删除 UploadFile 返回的 Path 对应的文件。
	DeleteFile(ctx context.Context, path string) error
}
