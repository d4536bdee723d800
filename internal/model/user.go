// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// User 对应于数据库中的 'users' 表。
type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	// IsOwner 标记系统所有者。所有者恒定持有 owner 角色，
	// 其角色分配不可修改，账号不可通过批量删除接口删除。
	IsOwner   bool      `gorm:"not null;default:false" json:"isOwner"`
	Roles     []Role    `gorm:"many2many:user_roles" json:"roles,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (User) TableName() string {
	return "users"
}

// Role 对应于数据库中的 'roles' 表。
type Role struct {
	ID          uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string       `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
	Description string       `gorm:"type:varchar(255)" json:"description"`
	// IsSystem 标记系统内置角色（如 owner），内置角色不可删除。
	IsSystem    bool         `gorm:"not null;default:false" json:"isSystem"`
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Role) TableName() string {
	return "roles"
}

// Permission 对应于数据库中的 'permissions' 表。
// Key 是权限的唯一标识，如 "file.upload"、"storage.manage"。
type Permission struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Key         string `gorm:"type:varchar(100);not null;uniqueIndex" json:"key"`
	Description string `gorm:"type:varchar(255)" json:"description"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Permission) TableName() string {
	return "permissions"
}
