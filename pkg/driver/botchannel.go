package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"yunpan-go/pkg/log"
)

const telegramAPIBase = "https://api.telegram.org"

// BotChannelAdapter 把 Telegram Bot 频道当作存储后端：
// 上传走 sendDocument，存储路径记录返回的 file_id，
// 下载走 getFile 拿到临时下载地址后转发内容。
type BotChannelAdapter struct {
	cfg    BotChannelConfig
	client *http.Client
}

// NewBotChannelAdapter 创建一个 Telegram 频道适配器，配置在此处校验。
func NewBotChannelAdapter(cfg BotChannelConfig) (*BotChannelAdapter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &BotChannelAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (a *BotChannelAdapter) apiURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", telegramAPIBase, a.cfg.BotToken, method)
}

// telegramResponse 是 Bot API 的通用响应包装。
type telegramResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// Upload 通过 sendDocument 将文件发到配置的频道，返回 file_id 作为存储路径。
func (a *BotChannelAdapter) Upload(ctx context.Context, r io.Reader, size int64, key string) (string, error) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("chat_id", a.cfg.ChatID); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	part, err := writer.CreateFormFile("document", key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.apiURL("sendDocument"), body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result struct {
		Document struct {
			FileID string `json:"file_id"`
		} `json:"document"`
	}
	if err := a.do(req, &result); err != nil {
		return "", err
	}
	if result.Document.FileID == "" {
		return "", fmt.Errorf("%w: sendDocument 未返回 file_id", ErrBackendUnavailable)
	}
	return result.Document.FileID, nil
}

// Download 先 getFile 换取临时 file_path，再拉取文件内容。
func (a *BotChannelAdapter) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, "GET",
		a.apiURL("getFile")+"?file_id="+url.QueryEscape(path), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	var result struct {
		FilePath string `json:"file_path"`
	}
	if err := a.do(req, &result); err != nil {
		return nil, err
	}
	if result.FilePath == "" {
		return nil, ErrObjectNotFound
	}

	fileURL := fmt.Sprintf("%s/file/bot%s/%s", telegramAPIBase, a.cfg.BotToken, result.FilePath)
	dlReq, err := http.NewRequestWithContext(ctx, "GET", fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	resp, err := a.client.Do(dlReq)
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

// Delete 对 Telegram 频道无能为力：Bot API 不支持按 file_id 删除文件，
// 按约定返回 false 让调用方继续元数据清理。
func (a *BotChannelAdapter) Delete(ctx context.Context, path string) bool {
	log.Infof("telegram 后端不支持删除文件，跳过: %s", path)
	return false
}

// TestConnection 调用 getMe 做一次轻量往返。
func (a *BotChannelAdapter) TestConnection(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", a.apiURL("getMe"), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	var result struct {
		Username string `json:"username"`
	}
	return a.do(req, &result)
}

// do 执行请求并解包 Bot API 的通用响应。
func (a *BotChannelAdapter) do(req *http.Request, out interface{}) error {
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	var wrapper telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return fmt.Errorf("%w: 解析响应失败: %v", ErrBackendUnavailable, err)
	}
	if !wrapper.OK {
		return fmt.Errorf("%w: telegram 返回错误: %s", ErrBackendUnavailable, wrapper.Description)
	}
	if out != nil {
		if err := json.Unmarshal(wrapper.Result, out); err != nil {
			return fmt.Errorf("%w: 解析结果失败: %v", ErrBackendUnavailable, err)
		}
	}
	return nil
}
