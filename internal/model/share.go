// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// ShareSnapshotType 定义了快照的目标类型。
type ShareSnapshotType string

const (
	SnapshotTypeFile   ShareSnapshotType = "file"
	SnapshotTypeFolder ShareSnapshotType = "folder"
)

// Share 对应于数据库中的 'shares' 表。
// 分享的可见内容完全由创建时冻结的快照决定，与活动树解耦。
type Share struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ShareToken string `gorm:"type:varchar(64);not null;uniqueIndex" json:"shareToken"`
	SnapshotID uint   `gorm:"not null" json:"snapshotId"`
	// PasswordHash 为 NULL 表示非加密分享。
	PasswordHash *string `gorm:"type:varchar(255)" json:"-"`
	// ExpiresAt 为 NULL 表示永不过期。
	ExpiresAt *time.Time `json:"expiresAt"`
	// DownloadLimit 为 NULL 表示不限制下载次数。
	DownloadLimit *int      `json:"downloadLimit"`
	DownloadCount int       `gorm:"not null;default:0" json:"downloadCount"`
	ViewCount     int       `gorm:"not null;default:0" json:"viewCount"`
	IsActive      bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedBy     uint      `gorm:"not null;index" json:"createdBy"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Snapshot *ShareSnapshot `gorm:"foreignKey:SnapshotID" json:"snapshot,omitempty"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Share) TableName() string {
	return "shares"
}

// ShareSnapshot 对应于数据库中的 'share_snapshots' 表。
// SnapshotData 是创建分享时递归展开的目录/文件树 JSON，创建后不可变，
// 后续对活动树的改名、移动、删除都不会影响它。
type ShareSnapshot struct {
	ID           uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	Type         ShareSnapshotType `gorm:"type:varchar(10);not null" json:"type"`
	SnapshotData string            `gorm:"type:longtext;not null" json:"-"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (ShareSnapshot) TableName() string {
	return "share_snapshots"
}

// SnapshotFile 是快照中的单个文件节点。
type SnapshotFile struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// SnapshotFolder 是快照中的单个目录节点，Children 为其内容的递归展开。
type SnapshotFolder struct {
	ID       uint         `json:"id"`
	Name     string       `json:"name"`
	Children SnapshotTree `json:"children"`
}

// SnapshotTree 是快照的一层内容：文件列表与子目录列表。
type SnapshotTree struct {
	Files   []SnapshotFile   `json:"files"`
	Folders []SnapshotFolder `json:"folders"`
}
