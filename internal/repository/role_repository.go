// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"gorm.io/gorm"

	"yunpan-go/internal/model"
)

// RoleRepository 接口定义了角色与权限数据的持久化操作。
type RoleRepository interface {
	CreateRole(role *model.Role) error
	FindRoleByID(id uint) (*model.Role, error)
	FindRoleByName(name string) (*model.Role, error)
	FindAllRoles() ([]model.Role, error)
	DeleteRole(id uint) error

	CreatePermission(perm *model.Permission) error
	FindAllPermissions() ([]model.Permission, error)
	FindPermissionsByUser(userID uint) ([]model.Permission, error)

	ReplaceUserRoles(userID uint, roleIDs []uint) error
	ReplaceRolePermissions(roleID uint, permIDs []uint) error
}

// roleRepository 是 RoleRepository 接口的 GORM 实现。
type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository 创建一个新的 RoleRepository 实例。
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

// CreateRole 创建一个新角色。
func (r *roleRepository) CreateRole(role *model.Role) error {
	return r.db.Create(role).Error
}

// FindRoleByID 根据 ID 查找角色，预加载权限。
func (r *roleRepository) FindRoleByID(id uint) (*model.Role, error) {
	var role model.Role
	err := r.db.Preload("Permissions").First(&role, id).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// FindRoleByName 根据名称查找角色，预加载权限。
func (r *roleRepository) FindRoleByName(name string) (*model.Role, error) {
	var role model.Role
	err := r.db.Preload("Permissions").Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// FindAllRoles 返回所有角色。
func (r *roleRepository) FindAllRoles() ([]model.Role, error) {
	var roles []model.Role
	err := r.db.Preload("Permissions").Find(&roles).Error
	return roles, err
}

// DeleteRole 删除一个角色及其权限/用户关联。
func (r *roleRepository) DeleteRole(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM role_permissions WHERE role_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM user_roles WHERE role_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Role{}, id).Error
	})
}

// CreatePermission 创建一个新权限。
func (r *roleRepository) CreatePermission(perm *model.Permission) error {
	return r.db.Create(perm).Error
}

// FindAllPermissions 返回所有权限。
func (r *roleRepository) FindAllPermissions() ([]model.Permission, error) {
	var perms []model.Permission
	err := r.db.Find(&perms).Error
	return perms, err
}

// FindPermissionsByUser 返回用户经由全部角色获得的权限并集。
func (r *roleRepository) FindPermissionsByUser(userID uint) ([]model.Permission, error) {
	var perms []model.Permission
	err := r.db.Distinct("permissions.*").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Find(&perms).Error
	return perms, err
}

// ReplaceUserRoles 原子替换用户的角色集合。
func (r *roleRepository) ReplaceUserRoles(userID uint, roleIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM user_roles WHERE user_id = ?", userID).Error; err != nil {
			return err
		}
		for _, roleID := range roleIDs {
			if err := tx.Exec("INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", userID, roleID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceRolePermissions 原子替换角色的权限集合。
func (r *roleRepository) ReplaceRolePermissions(roleID uint, permIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM role_permissions WHERE role_id = ?", roleID).Error; err != nil {
			return err
		}
		for _, permID := range permIDs {
			if err := tx.Exec("INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)", roleID, permID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
