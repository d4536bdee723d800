// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"gorm.io/gorm"

	"yunpan-go/internal/model"
)

// FileRepository 接口定义了文件元数据的持久化操作。
// 带 Quota 后缀的方法在单个事务里同时完成元数据变更和配额计数调整；
// 物理字节的写入在事务之外，由调用方先行完成。
type FileRepository interface {
	CreateWithQuota(file *model.File) error
	DeleteWithQuota(file *model.File) error
	FindByID(id uint) (*model.File, error)
	FindByIDs(ids []uint) ([]model.File, error)
	FindByFolder(folderID *uint) ([]model.File, error)
	List(folderID *uint, offset, limit int, sortBy, order string) ([]model.File, int64, error)
	UpdateFolderID(fileID uint, folderID *uint) error
	UpdateOriginalName(fileID uint, name string) error
	CountBySource(sourceID uint) (int64, error)
}

// fileRepository 是 FileRepository 接口的 GORM 实现。
type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository 创建一个新的 FileRepository 实例。
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

// CreateWithQuota 在单个事务里插入文件行并原子递增所属存储源的配额计数。
func (r *fileRepository) CreateWithQuota(file *model.File) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(file).Error; err != nil {
			return err
		}
		return tx.Model(&model.StorageSource{}).
			Where("id = ?", file.StorageSourceID).
			Update("quota_used", gorm.Expr("quota_used + ?", file.Size)).Error
	})
}

// DeleteWithQuota 在单个事务里删除文件行并原子递减所属存储源的配额计数。
func (r *fileRepository) DeleteWithQuota(file *model.File) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.File{}, file.ID).Error; err != nil {
			return err
		}
		return tx.Model(&model.StorageSource{}).
			Where("id = ?", file.StorageSourceID).
			Update("quota_used", gorm.Expr("quota_used - ?", file.Size)).Error
	})
}

// FindByID 根据 ID 查找文件。
func (r *fileRepository) FindByID(id uint) (*model.File, error) {
	var file model.File
	err := r.db.First(&file, id).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// FindByIDs 按 ID 列表批量查找文件，用于检索结果回查。
func (r *fileRepository) FindByIDs(ids []uint) ([]model.File, error) {
	var files []model.File
	if len(ids) == 0 {
		return files, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&files).Error
	return files, err
}

// FindByFolder 返回指定目录下的全部文件（不分页），
// 用于目录复制、快照构建和打包下载的整树遍历。
func (r *fileRepository) FindByFolder(folderID *uint) ([]model.File, error) {
	var files []model.File
	db := r.db.Order("original_name asc")
	if folderID == nil {
		db = db.Where("folder_id IS NULL")
	} else {
		db = db.Where("folder_id = ?", *folderID)
	}
	err := db.Find(&files).Error
	return files, err
}

// sortColumn 将对外的排序键映射到列名，未知键回退到名称排序。
func sortColumn(sortBy string) string {
	switch sortBy {
	case "size":
		return "size"
	case "createdAt":
		return "created_at"
	default:
		return "original_name"
	}
}

// List 分页检索指定目录下的文件，返回文件列表和总数。
func (r *fileRepository) List(folderID *uint, offset, limit int, sortBy, order string) ([]model.File, int64, error) {
	var files []model.File
	var total int64

	db := r.db.Model(&model.File{})
	if folderID == nil {
		db = db.Where("folder_id IS NULL")
	} else {
		db = db.Where("folder_id = ?", *folderID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if order != "desc" {
		order = "asc"
	}
	err := db.Order(sortColumn(sortBy) + " " + order).
		Offset(offset).Limit(limit).Find(&files).Error
	if err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

// UpdateFolderID 更新文件的所属目录。
func (r *fileRepository) UpdateFolderID(fileID uint, folderID *uint) error {
	return r.db.Model(&model.File{}).Where("id = ?", fileID).
		Update("folder_id", folderID).Error
}

// UpdateOriginalName 更新文件的展示名称，纯元数据操作。
func (r *fileRepository) UpdateOriginalName(fileID uint, name string) error {
	return r.db.Model(&model.File{}).Where("id = ?", fileID).
		Update("original_name", name).Error
}

// CountBySource 统计归属某个存储源的文件数量，用于存储源删除前的引用检查。
func (r *fileRepository) CountBySource(sourceID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.File{}).Where("storage_source_id = ?", sourceID).Count(&count).Error
	return count, err
}
