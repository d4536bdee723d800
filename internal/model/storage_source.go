// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// StorageSourceType 定义了存储源的后端类型。
type StorageSourceType string

const (
	StorageTypeLocal      StorageSourceType = "local"
	StorageTypeR2         StorageSourceType = "r2"
	StorageTypeQiniu      StorageSourceType = "qiniu"
	StorageTypeMinIO      StorageSourceType = "minio"
	StorageTypeUpyun      StorageSourceType = "upyun"
	StorageTypeTelegram   StorageSourceType = "telegram"
	StorageTypeCloudinary StorageSourceType = "cloudinary"
	StorageTypeGitHub     StorageSourceType = "github"
	StorageTypeCustom     StorageSourceType = "custom"
)

// StorageSource 对应于数据库中的 'storage_sources' 表。
// 每条记录描述一个已配置的物理存储后端及其配额。
// 约束：0 <= QuotaUsed <= QuotaLimit（写前检查，非事务强制）。
type StorageSource struct {
	ID   uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string            `gorm:"type:varchar(100);not null" json:"name"`
	Type StorageSourceType `gorm:"type:varchar(20);not null" json:"type"`
	// Config 是后端专属配置的 JSON 字符串，由 pkg/driver 按类型解析校验。
	Config     string    `gorm:"type:text" json:"config"`
	// Priority 越小优先级越高，上传时在所有激活的存储源中按优先级选取。
	Priority   int       `gorm:"not null;default:100" json:"priority"`
	QuotaUsed  int64     `gorm:"not null;default:0" json:"quotaUsed"`
	QuotaLimit int64     `gorm:"not null;default:0" json:"quotaLimit"`
	IsActive   bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (StorageSource) TableName() string {
	return "storage_sources"
}

// QuotaAvailable 返回该存储源剩余的可用字节数。
func (s *StorageSource) QuotaAvailable() int64 {
	remain := s.QuotaLimit - s.QuotaUsed
	if remain < 0 {
		return 0
	}
	return remain
}
