package driver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"yunpan-go/pkg/log"
)

const githubAPIBase = "https://api.github.com"

// GitRepoAdapter 把 GitHub 仓库当作存储后端，通过 Contents API 读写文件。
// 注意 Contents API 对单文件有约 100MB 的硬限制。
type GitRepoAdapter struct {
	cfg    GitRepoConfig
	client *http.Client
}

// NewGitRepoAdapter 创建一个 GitHub 仓库适配器，配置在此处校验。
func NewGitRepoAdapter(cfg GitRepoConfig) (*GitRepoAdapter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	return &GitRepoAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (a *GitRepoAdapter) contentsURL(path string) string {
	repoPath := path
	if a.cfg.PathPrefix != "" {
		repoPath = strings.TrimRight(a.cfg.PathPrefix, "/") + "/" + path
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", githubAPIBase, a.cfg.Owner, a.cfg.Repo, repoPath)
}

func (a *GitRepoAdapter) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+a.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	return req, nil
}

// getSHA 查询仓库内文件的 blob SHA，文件不存在时返回空串。
func (a *GitRepoAdapter) getSHA(ctx context.Context, path string) (string, error) {
	req, err := a.newRequest(ctx, "GET", a.contentsURL(path)+"?ref="+a.cfg.Branch, nil)
	if err != nil {
		return "", err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: github 返回状态 %d", ErrBackendUnavailable, resp.StatusCode)
	}
	var result struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return result.SHA, nil
}

// Upload 通过 Contents API 提交文件，内容以 base64 编码随请求体发送。
func (a *GitRepoAdapter) Upload(ctx context.Context, r io.Reader, size int64, key string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	payload := map[string]string{
		"message": "upload " + key,
		"content": base64.StdEncoding.EncodeToString(data),
		"branch":  a.cfg.Branch,
	}
	// 同名文件已存在时必须带上旧 SHA 才能覆盖
	if sha, err := a.getSHA(ctx, key); err == nil && sha != "" {
		payload["sha"] = sha
	}

	body, _ := json.Marshal(payload)
	req, err := a.newRequest(ctx, "PUT", a.contentsURL(key), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: github 提交失败 [%d]: %s", ErrBackendUnavailable, resp.StatusCode, string(raw))
	}
	return key, nil
}

// Download 通过 Contents API 的 raw 媒体类型直接取文件内容。
func (a *GitRepoAdapter) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := a.newRequest(ctx, "GET", a.contentsURL(path)+"?ref="+a.cfg.Branch, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.raw+json")

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
		return nil, fmt.Errorf("%w: github 返回状态 %d", ErrBackendUnavailable, resp.StatusCode)
	}
	return resp.Body, nil
}

// Delete 尽力删除仓库内文件。
func (a *GitRepoAdapter) Delete(ctx context.Context, path string) bool {
	sha, err := a.getSHA(ctx, path)
	if err != nil || sha == "" {
		return false
	}

	body, _ := json.Marshal(map[string]string{
		"message": "delete " + path,
		"sha":     sha,
		"branch":  a.cfg.Branch,
	})
	req, err := a.newRequest(context.Background(), "DELETE", a.contentsURL(path), bytes.NewReader(body))
	if err != nil {
		return false
	}
	resp, err := a.client.Do(req)
	if err != nil {
		log.Warnf("github 删除失败: %s, err=%v", path, err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// TestConnection 查询仓库信息做一次轻量往返。
func (a *GitRepoAdapter) TestConnection(ctx context.Context) error {
	url := fmt.Sprintf("%s/repos/%s/%s", githubAPIBase, a.cfg.Owner, a.cfg.Repo)
	req, err := a.newRequest(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: github 返回状态 %d", ErrBackendUnavailable, resp.StatusCode)
	}
	return nil
}

// GetDirectURL 返回 raw.githubusercontent.com 上的直链，仅对公开仓库有效。
func (a *GitRepoAdapter) GetDirectURL(ctx context.Context, path string) (string, error) {
	repoPath := path
	if a.cfg.PathPrefix != "" {
		repoPath = strings.TrimRight(a.cfg.PathPrefix, "/") + "/" + path
	}
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s",
		a.cfg.Owner, a.cfg.Repo, a.cfg.Branch, repoPath), nil
}
