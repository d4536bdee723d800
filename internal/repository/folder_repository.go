// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"gorm.io/gorm"

	"yunpan-go/internal/model"
)

// FolderRepository 接口定义了目录树的持久化操作。
// 根目录以 parentID = nil 表示，不存在对应的数据库行。
type FolderRepository interface {
	Create(folder *model.Folder) error
	FindByID(id uint) (*model.Folder, error)
	FindByNameAndParent(name string, parentID *uint) (*model.Folder, error)
	FindChildren(parentID *uint) ([]model.Folder, error)
	Update(folder *model.Folder) error
	UpdatePath(id uint, path string) error
	Delete(id uint) error
}

// folderRepository 是 FolderRepository 接口的 GORM 实现。
type folderRepository struct {
	db *gorm.DB
}

// NewFolderRepository 创建一个新的 FolderRepository 实例。
func NewFolderRepository(db *gorm.DB) FolderRepository {
	return &folderRepository{db: db}
}

// Create 创建一个新的目录记录。(name, parent_id) 的唯一约束由数据库强制。
func (r *folderRepository) Create(folder *model.Folder) error {
	return r.db.Create(folder).Error
}

// FindByID 根据 ID 查找目录。
func (r *folderRepository) FindByID(id uint) (*model.Folder, error) {
	var folder model.Folder
	err := r.db.First(&folder, id).Error
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// FindByNameAndParent 查找同一父目录下指定名称的目录，用于重名检查。
func (r *folderRepository) FindByNameAndParent(name string, parentID *uint) (*model.Folder, error) {
	var folder model.Folder
	db := r.db.Where("name = ?", name)
	if parentID == nil {
		db = db.Where("parent_id IS NULL")
	} else {
		db = db.Where("parent_id = ?", *parentID)
	}
	err := db.First(&folder).Error
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// FindChildren 返回指定目录的全部直接子目录，parentID 为 nil 表示根目录。
func (r *folderRepository) FindChildren(parentID *uint) ([]model.Folder, error) {
	var folders []model.Folder
	db := r.db.Order("name asc")
	if parentID == nil {
		db = db.Where("parent_id IS NULL")
	} else {
		db = db.Where("parent_id = ?", *parentID)
	}
	err := db.Find(&folders).Error
	return folders, err
}

// Update 更新一个已存在的目录记录。
func (r *folderRepository) Update(folder *model.Folder) error {
	return r.db.Save(folder).Error
}

// UpdatePath 单独更新目录的物化路径，用于移动时的级联重算。
func (r *folderRepository) UpdatePath(id uint, path string) error {
	return r.db.Model(&model.Folder{}).Where("id = ?", id).Update("path", path).Error
}

// Delete 删除一个目录记录。
func (r *folderRepository) Delete(id uint) error {
	return r.db.Delete(&model.Folder{}, id).Error
}
