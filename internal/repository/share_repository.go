// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"gorm.io/gorm"

	"yunpan-go/internal/model"
)

// ShareRepository 接口定义了分享与快照的持久化操作。
type ShareRepository interface {
	// CreateWithSnapshot 在单个事务里先写入快照再写入分享记录。
	CreateWithSnapshot(share *model.Share, snapshot *model.ShareSnapshot) error
	FindByToken(token string) (*model.Share, error)
	FindByID(id uint) (*model.Share, error)
	FindByCreator(userID uint) ([]model.Share, error)
	// IncrementViewCount / IncrementDownloadCount 原子递增计数器。
	IncrementViewCount(id uint) error
	IncrementDownloadCount(id uint) error
	Deactivate(id uint) error
	// Delete 删除分享及其快照。
	Delete(id uint) error
}

// shareRepository 是 ShareRepository 接口的 GORM 实现。
type shareRepository struct {
	db *gorm.DB
}

// NewShareRepository 创建一个新的 ShareRepository 实例。
func NewShareRepository(db *gorm.DB) ShareRepository {
	return &shareRepository{db: db}
}

// CreateWithSnapshot 先写入快照，拿到 ID 后写入分享记录，整体在一个事务中。
func (r *shareRepository) CreateWithSnapshot(share *model.Share, snapshot *model.ShareSnapshot) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(snapshot).Error; err != nil {
			return err
		}
		share.SnapshotID = snapshot.ID
		return tx.Create(share).Error
	})
}

// FindByToken 根据分享令牌查找分享，预加载快照。
func (r *shareRepository) FindByToken(token string) (*model.Share, error) {
	var share model.Share
	err := r.db.Preload("Snapshot").Where("share_token = ?", token).First(&share).Error
	if err != nil {
		return nil, err
	}
	return &share, nil
}

// FindByID 根据 ID 查找分享，预加载快照。
func (r *shareRepository) FindByID(id uint) (*model.Share, error) {
	var share model.Share
	err := r.db.Preload("Snapshot").First(&share, id).Error
	if err != nil {
		return nil, err
	}
	return &share, nil
}

// FindByCreator 返回某个用户创建的全部分享，按创建时间倒序。
func (r *shareRepository) FindByCreator(userID uint) ([]model.Share, error) {
	var shares []model.Share
	err := r.db.Where("created_by = ?", userID).Order("created_at desc").Find(&shares).Error
	return shares, err
}

// IncrementViewCount 原子递增浏览计数。
func (r *shareRepository) IncrementViewCount(id uint) error {
	return r.db.Model(&model.Share{}).Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1")).Error
}

// IncrementDownloadCount 原子递增下载计数。
func (r *shareRepository) IncrementDownloadCount(id uint) error {
	return r.db.Model(&model.Share{}).Where("id = ?", id).
		Update("download_count", gorm.Expr("download_count + 1")).Error
}

// Deactivate 停用一个分享，记录保留。
func (r *shareRepository) Deactivate(id uint) error {
	return r.db.Model(&model.Share{}).Where("id = ?", id).
		Update("is_active", false).Error
}

// Delete 删除分享及其快照。
func (r *shareRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var share model.Share
		if err := tx.First(&share, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Share{}, id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.ShareSnapshot{}, share.SnapshotID).Error
	})
}
