package driver

import (
	"fmt"

	"yunpan-go/internal/model"
)

// variant 是封闭的后端变体集合。数据库中的存储源类型
// 先归并到变体，再由变体决定具体的适配器实现。
type variant int

const (
	variantLocal variant = iota
	variantObjectStore
	variantBotChannel
	variantGitRepo
	variantCustom
)

// variantOf 将存储源类型归并到后端变体，未知类型返回错误。
func variantOf(t model.StorageSourceType) (variant, error) {
	switch t {
	case model.StorageTypeLocal:
		return variantLocal, nil
	case model.StorageTypeR2, model.StorageTypeQiniu, model.StorageTypeMinIO:
		return variantObjectStore, nil
	case model.StorageTypeTelegram:
		return variantBotChannel, nil
	case model.StorageTypeGitHub:
		return variantGitRepo, nil
	case model.StorageTypeUpyun, model.StorageTypeCloudinary, model.StorageTypeCustom:
		return variantCustom, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedBackend, t)
	}
}

// Factory 按存储源记录构造适配器。
// LocalDefaults 提供 local 类型配置缺省时的兜底值。
type Factory struct {
	LocalDefaults LocalConfig
}

// New 根据存储源的类型和配置构造适配器。
// 对封闭的变体集合是全函数：未知类型立刻失败而不是猜测配置结构。
func (f *Factory) New(source *model.StorageSource) (Adapter, error) {
	v, err := variantOf(source.Type)
	if err != nil {
		return nil, err
	}

	switch v {
	case variantLocal:
		cfg := f.LocalDefaults
		if err := parseConfig(source.Config, &cfg); err != nil {
			return nil, err
		}
		return NewLocalAdapter(cfg), nil
	case variantObjectStore:
		var cfg ObjectStoreConfig
		if err := parseConfig(source.Config, &cfg); err != nil {
			return nil, err
		}
		return NewObjectStoreAdapter(cfg)
	case variantBotChannel:
		var cfg BotChannelConfig
		if err := parseConfig(source.Config, &cfg); err != nil {
			return nil, err
		}
		return NewBotChannelAdapter(cfg)
	case variantGitRepo:
		var cfg GitRepoConfig
		if err := parseConfig(source.Config, &cfg); err != nil {
			return nil, err
		}
		return NewGitRepoAdapter(cfg)
	case variantCustom:
		var cfg CustomConfig
		if err := parseConfig(source.Config, &cfg); err != nil {
			return nil, err
		}
		return NewCustomAdapter(cfg)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, source.Type)
}
