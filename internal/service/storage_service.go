// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"yunpan-go/internal/model"
	"yunpan-go/internal/repository"
	"yunpan-go/pkg/driver"
	"yunpan-go/pkg/log"
)

// AdapterFactory 按存储源记录构造存储适配器。
// 生产实现是 pkg/driver 的 Factory，测试中可以替换为桩实现。
type AdapterFactory interface {
	New(source *model.StorageSource) (driver.Adapter, error)
}

// StorageService 接口定义了存储源管理与配额台账的业务操作。
type StorageService interface {
	CreateSource(ctx context.Context, source *model.StorageSource) error
	UpdateSource(ctx context.Context, source *model.StorageSource) error
	// DeleteSource 仅在没有文件引用该源时允许删除；
	// local 类型还要求存在至少一个其它激活的存储源兜底。
	DeleteSource(ctx context.Context, id uint) error
	ListSources() ([]model.StorageSource, error)
	GetSource(id uint) (*model.StorageSource, error)
	// TestSource 对指定存储源做一次连通性探测并同步 IsActive。
	TestSource(ctx context.Context, id uint) (bool, error)
	// SelectForUpload 在激活的存储源中按优先级选出能容纳 size 的那个。
	SelectForUpload(size int64) (*model.StorageSource, error)
	// CheckQuota 做写前配额检查，不足时返回 ErrQuotaExceeded。
	CheckQuota(source *model.StorageSource, incomingSize int64) error
	// AdapterFor 为存储源构造适配器。
	AdapterFor(source *model.StorageSource) (driver.Adapter, error)
	// HealthSweep 探测全部存储源并翻转各自的 IsActive 状态。
	HealthSweep(ctx context.Context)
}

// storageService 是 StorageService 接口的实现。
type storageService struct {
	sourceRepo repository.StorageSourceRepository
	fileRepo   repository.FileRepository
	factory    AdapterFactory
}

// NewStorageService 创建一个新的 StorageService 实例。
func NewStorageService(sourceRepo repository.StorageSourceRepository, fileRepo repository.FileRepository, factory AdapterFactory) StorageService {
	return &storageService{
		sourceRepo: sourceRepo,
		fileRepo:   fileRepo,
		factory:    factory,
	}
}

// CreateSource 创建存储源：先构造适配器做配置校验和连通性探测，
// 全部通过后才落库，保证"配置错误在创建时立刻失败"。
func (s *storageService) CreateSource(ctx context.Context, source *model.StorageSource) error {
	if source.QuotaLimit < 0 || source.QuotaUsed != 0 {
		return fmt.Errorf("%w: 配额初始值非法", ErrValidation)
	}

	adapter, err := s.factory.New(source)
	if err != nil {
		if errors.Is(err, driver.ErrUnsupportedBackend) || errors.Is(err, driver.ErrInvalidConfig) {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return err
	}
	if init, ok := adapter.(driver.Initializer); ok {
		if err := init.Initialize(); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	if err := adapter.TestConnection(ctx); err != nil {
		return fmt.Errorf("存储后端连通性探测失败: %w", err)
	}

	return s.sourceRepo.Create(source)
}

// UpdateSource 更新存储源，配置变更同样先经过适配器校验。
func (s *storageService) UpdateSource(ctx context.Context, source *model.StorageSource) error {
	if _, err := s.sourceRepo.FindByID(source.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if _, err := s.factory.New(source); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.sourceRepo.Update(source)
}

// DeleteSource 删除存储源，先做引用检查和 local 兜底检查。
func (s *storageService) DeleteSource(ctx context.Context, id uint) error {
	source, err := s.sourceRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	count, err := s.fileRepo.CountBySource(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSourceInUse
	}

	if source.Type == model.StorageTypeLocal {
		others, err := s.sourceRepo.CountActiveExcept(id)
		if err != nil {
			return err
		}
		if others == 0 {
			return fmt.Errorf("%w: 删除本地存储源前需要至少一个其它激活的存储源", ErrValidation)
		}
	}

	return s.sourceRepo.Delete(id)
}

// ListSources 返回所有存储源。
func (s *storageService) ListSources() ([]model.StorageSource, error) {
	return s.sourceRepo.FindAll()
}

// GetSource 根据 ID 获取存储源。
func (s *storageService) GetSource(id uint) (*model.StorageSource, error) {
	source, err := s.sourceRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return source, nil
}

// TestSource 对指定存储源做一次连通性探测并同步 IsActive。
func (s *storageService) TestSource(ctx context.Context, id uint) (bool, error) {
	source, err := s.GetSource(id)
	if err != nil {
		return false, err
	}
	adapter, err := s.factory.New(source)
	if err != nil {
		return false, err
	}

	ok := adapter.TestConnection(ctx) == nil
	if source.IsActive != ok {
		if err := s.sourceRepo.UpdateActive(id, ok); err != nil {
			log.Warnf("[StorageService] 更新存储源激活状态失败: id=%d, err=%v", id, err)
		}
	}
	return ok, nil
}

// SelectForUpload 在激活的存储源中按优先级选出第一个能容纳 size 的源。
// 没有激活的源返回 ErrNoActiveSource；有源但都没有余量返回 ErrQuotaExceeded。
func (s *storageService) SelectForUpload(size int64) (*model.StorageSource, error) {
	sources, err := s.sourceRepo.FindActiveOrdered()
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, ErrNoActiveSource
	}
	for i := range sources {
		if sources[i].QuotaUsed+size <= sources[i].QuotaLimit {
			return &sources[i], nil
		}
	}
	return nil, ErrQuotaExceeded
}

// CheckQuota 做写前配额检查。这是软约束：检查之后、写入之前
// 的并发上传可能让计数短暂越界，属于设计上接受的竞态窗口。
func (s *storageService) CheckQuota(source *model.StorageSource, incomingSize int64) error {
	if source.QuotaUsed+incomingSize > source.QuotaLimit {
		return ErrQuotaExceeded
	}
	return nil
}

// AdapterFor 为存储源构造适配器。
func (s *storageService) AdapterFor(source *model.StorageSource) (driver.Adapter, error) {
	return s.factory.New(source)
}

// HealthSweep 探测全部存储源并翻转各自的 IsActive 状态，
// 由 main 以固定周期在后台调用。
func (s *storageService) HealthSweep(ctx context.Context) {
	sources, err := s.sourceRepo.FindAll()
	if err != nil {
		log.Error("[StorageService] 探活扫描读取存储源失败", err)
		return
	}
	for i := range sources {
		probeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		adapter, err := s.factory.New(&sources[i])
		if err != nil {
			cancel()
			log.Warnf("[StorageService] 探活跳过无法构造适配器的源: id=%d, err=%v", sources[i].ID, err)
			continue
		}
		ok := adapter.TestConnection(probeCtx) == nil
		cancel()
		if sources[i].IsActive != ok {
			log.Infof("[StorageService] 存储源 %d (%s) 状态翻转为 active=%v", sources[i].ID, sources[i].Name, ok)
			if err := s.sourceRepo.UpdateActive(sources[i].ID, ok); err != nil {
				log.Warnf("[StorageService] 更新存储源激活状态失败: id=%d, err=%v", sources[i].ID, err)
			}
		}
	}
}
