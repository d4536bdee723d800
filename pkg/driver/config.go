package driver

import (
	"encoding/json"
	"fmt"
	"strings"
)

// 后端配置是按变体区分的标签联合：每种变体有自己的必填字段，
// 在适配器构造时校验，保证"配置错误在创建时立刻失败"。

// LocalConfig 是本地磁盘后端的配置。
type LocalConfig struct {
	// BaseDir 是存储根目录，为空时由工厂合成默认值。
	BaseDir string `json:"baseDir"`
	// MaxFileSize 是单文件大小上限（字节），0 表示使用默认值。
	MaxFileSize int64 `json:"maxFileSize"`
}

// ObjectStoreConfig 是 S3 兼容对象存储后端（minio/r2/qiniu 等）的配置。
type ObjectStoreConfig struct {
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
	Bucket    string `json:"bucket"`
	UseSSL    bool   `json:"useSSL"`
	// Region 可选，部分 S3 兼容服务需要。
	Region string `json:"region"`
	// PublicBaseURL 可选，配置后 GetDirectURL 直接拼接公开访问地址，
	// 否则回退到预签名 URL。
	PublicBaseURL string `json:"publicBaseUrl"`
}

// BotChannelConfig 是 Telegram Bot 频道后端的配置。
type BotChannelConfig struct {
	BotToken string `json:"botToken"`
	ChatID   string `json:"chatId"`
}

// GitRepoConfig 是 GitHub 仓库后端的配置。
type GitRepoConfig struct {
	Token  string `json:"token"`
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
	// PathPrefix 可选，所有对象写到仓库内该前缀之下。
	PathPrefix string `json:"pathPrefix"`
}

// CustomConfig 是自定义 HTTP 后端的配置：对 Endpoint 做 PUT/GET/DELETE。
type CustomConfig struct {
	Endpoint string `json:"endpoint"`
	// AuthHeader/AuthValue 可选，附加到每个请求上（如 Authorization）。
	AuthHeader string `json:"authHeader"`
	AuthValue  string `json:"authValue"`
}

func parseConfig(raw string, out interface{}) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *ObjectStoreConfig) validate() error {
	if c.Endpoint == "" || c.Bucket == "" {
		return fmt.Errorf("%w: object store 需要 endpoint 和 bucket", ErrInvalidConfig)
	}
	return nil
}

func (c *BotChannelConfig) validate() error {
	if c.BotToken == "" || c.ChatID == "" {
		return fmt.Errorf("%w: bot channel 需要 botToken 和 chatId", ErrInvalidConfig)
	}
	return nil
}

func (c *GitRepoConfig) validate() error {
	if c.Token == "" || c.Owner == "" || c.Repo == "" {
		return fmt.Errorf("%w: git repo 需要 token、owner 和 repo", ErrInvalidConfig)
	}
	return nil
}

func (c *CustomConfig) validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("%w: custom 后端需要 endpoint", ErrInvalidConfig)
	}
	return nil
}
