package driver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"yunpan-go/pkg/log"
)

// CustomAdapter 对接任何支持 PUT/GET/DELETE 语义的 HTTP 存储服务
// （WebDAV 式端点、自建网关等），也作为 upyun/cloudinary
// 这类 REST 服务的统一接入方式。
type CustomAdapter struct {
	cfg    CustomConfig
	client *http.Client
}

// NewCustomAdapter 创建一个自定义 HTTP 后端适配器，配置在此处校验。
func NewCustomAdapter(cfg CustomConfig) (*CustomAdapter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &CustomAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (a *CustomAdapter) objectURL(key string) string {
	return a.cfg.Endpoint + "/" + url.PathEscape(key)
}

func (a *CustomAdapter) newRequest(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if a.cfg.AuthHeader != "" {
		req.Header.Set(a.cfg.AuthHeader, a.cfg.AuthValue)
	}
	return req, nil
}

// Upload 以 PUT 将字节写入端点，返回对象键作为存储路径。
func (a *CustomAdapter) Upload(ctx context.Context, r io.Reader, size int64, key string) (string, error) {
	req, err := a.newRequest(ctx, "PUT", a.objectURL(key), r)
	if err != nil {
		return "", err
	}
	if size >= 0 {
		req.ContentLength = size
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: 上传返回状态 %d", ErrBackendUnavailable, resp.StatusCode)
	}
	return key, nil
}

// Download 以 GET 读取对象内容。
func (a *CustomAdapter) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := a.newRequest(ctx, "GET", a.objectURL(path), nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		_ = resp.Body.Close()
		return nil, ErrObjectNotFound
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: 下载返回状态 %d", ErrBackendUnavailable, resp.StatusCode)
	}
	return resp.Body, nil
}

// Delete 以 DELETE 尽力删除对象。
func (a *CustomAdapter) Delete(ctx context.Context, path string) bool {
	req, err := a.newRequest(context.Background(), "DELETE", a.objectURL(path), nil)
	if err != nil {
		return false
	}
	resp, err := a.client.Do(req)
	if err != nil {
		log.Warnf("自定义后端删除失败: %s, err=%v", path, err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 300
}

// TestConnection 对端点根路径做一次 HEAD 往返。
func (a *CustomAdapter) TestConnection(ctx context.Context) error {
	req, err := a.newRequest(ctx, "HEAD", a.cfg.Endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: 端点返回状态 %d", ErrBackendUnavailable, resp.StatusCode)
	}
	return nil
}
