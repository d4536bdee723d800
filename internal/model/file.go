// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Folder 对应于数据库中的 'folders' 表。
// Path 是物化的完整路径（祖先名称以 / 连接），移动目录时
// 必须同步重算自身及全部后代目录的 Path。
// 同一父目录下名称唯一；根目录以 ParentID = NULL 表示。
type Folder struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex:uk_folder_name_parent" json:"name"`
	Path      string    `gorm:"type:varchar(2048);not null" json:"path"`
	ParentID  *uint     `gorm:"uniqueIndex:uk_folder_name_parent" json:"parentId"`
	CreatedBy uint      `gorm:"not null" json:"createdBy"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Folder) TableName() string {
	return "folders"
}

// File 对应于数据库中的 'files' 表。
// Name 是系统生成的存储键，OriginalName 是用户上传时的文件名。
// 每个文件在任一时刻归属于唯一的 StorageSource。
type File struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	OriginalName    string    `gorm:"type:varchar(255);not null" json:"originalName"`
	Size            int64     `gorm:"not null" json:"size"`
	MimeType        string    `gorm:"type:varchar(127)" json:"mimeType"`
	MD5Hash         string    `gorm:"type:varchar(32)" json:"md5Hash"`
	StoragePath     string    `gorm:"type:varchar(1024);not null" json:"storagePath"`
	StorageSourceID uint      `gorm:"not null;index" json:"storageSourceId"`
	// FolderID 为 NULL 表示文件位于根目录。
	FolderID        *uint     `gorm:"index" json:"folderId"`
	UploadedBy      uint      `gorm:"not null" json:"uploadedBy"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (File) TableName() string {
	return "files"
}
