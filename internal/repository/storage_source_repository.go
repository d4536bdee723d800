// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"gorm.io/gorm"

	"yunpan-go/internal/model"
)

// StorageSourceRepository 接口定义了存储源及其配额计数的持久化操作。
type StorageSourceRepository interface {
	Create(source *model.StorageSource) error
	FindByID(id uint) (*model.StorageSource, error)
	FindAll() ([]model.StorageSource, error)
	// FindActiveOrdered 返回所有激活的存储源，按优先级升序。
	FindActiveOrdered() ([]model.StorageSource, error)
	Update(source *model.StorageSource) error
	UpdateActive(id uint, active bool) error
	Delete(id uint) error
	// CountActiveExcept 统计除指定 ID 外处于激活状态的存储源数量，
	// 用于删除 local 源前的保底检查。
	CountActiveExcept(id uint) (int64, error)
	// IncrementQuota 以原子自增/自减方式调整 quota_used，
	// delta 为负值时表示释放配额。避免读-改-写造成的并发丢失更新。
	IncrementQuota(id uint, delta int64) error
}

// storageSourceRepository 是 StorageSourceRepository 接口的 GORM 实现。
type storageSourceRepository struct {
	db *gorm.DB
}

// NewStorageSourceRepository 创建一个新的 StorageSourceRepository 实例。
func NewStorageSourceRepository(db *gorm.DB) StorageSourceRepository {
	return &storageSourceRepository{db: db}
}

// Create 创建一个新的存储源记录。
func (r *storageSourceRepository) Create(source *model.StorageSource) error {
	return r.db.Create(source).Error
}

// FindByID 根据 ID 查找存储源。
func (r *storageSourceRepository) FindByID(id uint) (*model.StorageSource, error) {
	var source model.StorageSource
	err := r.db.First(&source, id).Error
	if err != nil {
		return nil, err
	}
	return &source, nil
}

// FindAll 返回所有存储源。
func (r *storageSourceRepository) FindAll() ([]model.StorageSource, error) {
	var sources []model.StorageSource
	err := r.db.Order("priority asc").Find(&sources).Error
	return sources, err
}

// FindActiveOrdered 返回所有激活的存储源，按优先级升序。
func (r *storageSourceRepository) FindActiveOrdered() ([]model.StorageSource, error) {
	var sources []model.StorageSource
	err := r.db.Where("is_active = ?", true).Order("priority asc").Find(&sources).Error
	return sources, err
}

// Update 更新一个已存在的存储源记录。
func (r *storageSourceRepository) Update(source *model.StorageSource) error {
	return r.db.Save(source).Error
}

// UpdateActive 单独更新存储源的激活状态，用于周期性探活。
func (r *storageSourceRepository) UpdateActive(id uint, active bool) error {
	return r.db.Model(&model.StorageSource{}).Where("id = ?", id).
		Update("is_active", active).Error
}

// Delete 删除一个存储源记录。引用检查在服务层完成。
func (r *storageSourceRepository) Delete(id uint) error {
	return r.db.Delete(&model.StorageSource{}, id).Error
}

// CountActiveExcept 统计除指定 ID 外处于激活状态的存储源数量。
func (r *storageSourceRepository) CountActiveExcept(id uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.StorageSource{}).
		Where("is_active = ? AND id <> ?", true, id).Count(&count).Error
	return count, err
}

// IncrementQuota 以原子表达式调整 quota_used。
func (r *storageSourceRepository) IncrementQuota(id uint, delta int64) error {
	return r.db.Model(&model.StorageSource{}).Where("id = ?", id).
		Update("quota_used", gorm.Expr("quota_used + ?", delta)).Error
}
