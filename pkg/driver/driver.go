// Package driver 提供了对物理存储后端的统一抽象。
// 每种后端实现 Adapter 接口，适配器本身无状态，不触碰数据库。
package driver

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrObjectNotFound 表示目标对象在后端不存在。
	ErrObjectNotFound = errors.New("object not found")
	// ErrBackendUnavailable 表示后端 I/O 失败。
	ErrBackendUnavailable = errors.New("storage backend unavailable")
	// ErrUnsupportedBackend 表示未知的后端类型。
	ErrUnsupportedBackend = errors.New("unsupported backend type")
	// ErrInvalidConfig 表示后端配置缺少必填字段或格式非法。
	ErrInvalidConfig = errors.New("invalid backend config")
	// ErrFileTooLarge 表示超过后端允许的单文件大小上限。
	ErrFileTooLarge = errors.New("file exceeds backend size limit")
)

// Adapter 是所有存储后端必须实现的能力接口。
type Adapter interface {
	// Upload 将 r 中的字节写入 key 指定的位置，返回应持久化到
	// File.StoragePath 的路径。size 为已知的内容长度，未知时传 -1。
	Upload(ctx context.Context, r io.Reader, size int64, key string) (string, error)

	// Download 按存储路径读取对象内容，对象不存在时返回 ErrObjectNotFound。
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete 尽力删除对象。对象缺失或删除失败返回 false 而不是错误，
	// 调用方可以继续完成元数据清理。
	Delete(ctx context.Context, path string) bool

	// TestConnection 对后端做一次轻量往返，用于创建存储源时的校验
	// 以及周期性的 IsActive 探活。
	TestConnection(ctx context.Context) error
}

// DirectURLProvider 是可选能力：后端支持直链（CDN、公开桶、预签名 URL）
// 时实现此接口。调用方应将"不实现该接口"视为功能不可用，而非错误。
type DirectURLProvider interface {
	GetDirectURL(ctx context.Context, path string) (string, error)
}

// Initializer 是可选能力：声明了此接口的适配器要求在首次使用前
// 调用 Initialize（例如本地后端创建基础目录）。
type Initializer interface {
	Initialize() error
}
