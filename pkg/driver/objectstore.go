package driver

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"yunpan-go/pkg/log"
)

// ObjectStoreAdapter 通过 S3 兼容协议访问对象存储后端，
// 覆盖 minio、Cloudflare R2、七牛等提供 S3 接口的服务。
type ObjectStoreAdapter struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// NewObjectStoreAdapter 创建一个对象存储适配器，配置在此处校验。
func NewObjectStoreAdapter(cfg ObjectStoreConfig) (*ObjectStoreAdapter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化对象存储客户端失败: %w", err)
	}
	return &ObjectStoreAdapter{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload 将对象写入桶中，返回对象键作为存储路径。
func (a *ObjectStoreAdapter) Upload(ctx context.Context, r io.Reader, size int64, key string) (string, error) {
	_, err := a.client.PutObject(ctx, a.bucket, key, r, size, minio.PutObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return key, nil
}

// Download 读取对象内容，对象不存在时返回 ErrObjectNotFound。
func (a *ObjectStoreAdapter) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	// GetObject 是惰性的，Stat 一次来区分对象缺失和后端故障
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return obj, nil
}

// Delete 尽力删除对象。
func (a *ObjectStoreAdapter) Delete(ctx context.Context, path string) bool {
	if err := a.client.RemoveObject(ctx, a.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		log.Warnf("对象存储删除失败: %s, err=%v", path, err)
		return false
	}
	return true
}

// TestConnection 检查桶是否存在并可达。
func (a *ObjectStoreAdapter) TestConnection(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if !exists {
		return fmt.Errorf("%w: 存储桶 '%s' 不存在", ErrBackendUnavailable, a.bucket)
	}
	return nil
}

// GetDirectURL 返回直链：配置了公开访问地址时直接拼接，
// 否则生成一小时有效的预签名 URL。
func (a *ObjectStoreAdapter) GetDirectURL(ctx context.Context, path string) (string, error) {
	if a.publicBaseURL != "" {
		return a.publicBaseURL + "/" + path, nil
	}
	u, err := a.client.PresignedGetObject(ctx, a.bucket, path, time.Hour, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return u.String(), nil
}
