package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"yunpan-go/pkg/log"
)

// LocalAdapter 将对象写到本地磁盘的 BaseDir 之下。
type LocalAdapter struct {
	baseDir     string
	maxFileSize int64
}

// NewLocalAdapter 创建一个本地磁盘适配器。
// 配置缺省时合成默认值：./storage 目录、100MB 单文件上限。
func NewLocalAdapter(cfg LocalConfig) *LocalAdapter {
	if cfg.BaseDir == "" {
		cfg.BaseDir = "./storage"
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 100 * 1024 * 1024
	}
	return &LocalAdapter{baseDir: cfg.BaseDir, maxFileSize: cfg.MaxFileSize}
}

// Initialize 创建基础目录，首次使用前必须调用。
func (a *LocalAdapter) Initialize() error {
	if err := os.MkdirAll(a.baseDir, 0o755); err != nil {
		return fmt.Errorf("创建本地存储目录失败: %w", err)
	}
	return nil
}

// resolve 将存储键映射到 baseDir 下的绝对路径，拒绝路径逃逸。
func (a *LocalAdapter) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("%w: 非法的存储键 %q", ErrInvalidConfig, key)
	}
	return filepath.Join(a.baseDir, clean), nil
}

// Upload 将字节写入本地文件，返回相对于 baseDir 的存储路径。
func (a *LocalAdapter) Upload(ctx context.Context, r io.Reader, size int64, key string) (string, error) {
	if size > a.maxFileSize {
		return "", ErrFileTooLarge
	}
	dst, err := a.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if written > a.maxFileSize {
		_ = os.Remove(dst)
		return "", ErrFileTooLarge
	}
	return key, nil
}

// Download 打开本地文件，不存在时返回 ErrObjectNotFound。
func (a *LocalAdapter) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := a.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return f, nil
}

// Delete 尽力删除本地文件，文件缺失或删除失败返回 false。
func (a *LocalAdapter) Delete(ctx context.Context, path string) bool {
	full, err := a.resolve(path)
	if err != nil {
		log.Warnf("本地删除失败，非法路径: %s", path)
		return false
	}
	if err := os.Remove(full); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warnf("本地删除失败: %s, err=%v", path, err)
		}
		return false
	}
	return true
}

// TestConnection 检查基础目录是否可用。
func (a *LocalAdapter) TestConnection(ctx context.Context) error {
	info, err := os.Stat(a.baseDir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s 不是目录", ErrBackendUnavailable, a.baseDir)
	}
	return nil
}
