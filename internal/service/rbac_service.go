// Package service 包含了应用的业务逻辑层。
package service

import (
	"errors"

	"gorm.io/gorm"

	"yunpan-go/internal/model"
	"yunpan-go/internal/repository"
	"yunpan-go/pkg/hash"
	"yunpan-go/pkg/log"
)

// 系统内置角色名。
const (
	RoleOwner = "owner"
	RoleUser  = "user"
)

// 系统权限键。
const (
	PermFileUpload    = "file.upload"
	PermFileDownload  = "file.download"
	PermFileDelete    = "file.delete"
	PermFileManage    = "file.manage"
	PermFolderManage  = "folder.manage"
	PermShareCreate   = "share.create"
	PermShareManage   = "share.manage"
	PermStorageManage = "storage.manage"
	PermUserManage    = "user.manage"
	PermRoleManage    = "role.manage"
)

// 系统权限键的全集。owner 角色在种子阶段被授予全部权限。
var allPermissionKeys = []string{
	PermFileUpload,
	PermFileDownload,
	PermFileDelete,
	PermFileManage,
	PermFolderManage,
	PermShareCreate,
	PermShareManage,
	PermStorageManage,
	PermUserManage,
	PermRoleManage,
}

// defaultUserPermissionKeys 是普通用户角色的默认权限。
var defaultUserPermissionKeys = []string{
	PermFileUpload,
	PermFileDownload,
	PermFileDelete,
	PermFileManage,
	PermFolderManage,
	PermShareCreate,
	PermShareManage,
}

// RBACService 接口定义了基于角色的访问控制操作。
type RBACService interface {
	// GetUserPermissions 返回用户经由全部角色获得的权限键并集。
	GetUserPermissions(userID uint) (map[string]struct{}, error)
	// CheckPermissions 做全量匹配：required 中的每个键都必须存在。
	CheckPermissions(userID uint, required ...string) (bool, error)
	AssignDefaultRole(userID uint) error
	// AssignRoles 替换用户的角色集合；目标是系统所有者时拒绝。
	AssignRoles(userID uint, roleIDs []uint) error
	// DeleteUsers 批量删除用户；列表中包含系统所有者时整体拒绝。
	DeleteUsers(ids []uint) error
	ListUsers(page, pageSize int) ([]model.User, int64, error)
	ListRoles() ([]model.Role, error)
	ListPermissions() ([]model.Permission, error)
	// SeedDefaults 幂等地创建权限全集与内置角色。
	SeedDefaults() error
	// EnsureOwner 幂等地创建系统所有者账号并绑定 owner 角色。
	EnsureOwner(username, email, password string) error
}

// rbacService 是 RBACService 接口的实现。
type rbacService struct {
	roleRepo repository.RoleRepository
	userRepo repository.UserRepository
}

// NewRBACService 创建一个新的 RBACService 实例。
func NewRBACService(roleRepo repository.RoleRepository, userRepo repository.UserRepository) RBACService {
	return &rbacService{roleRepo: roleRepo, userRepo: userRepo}
}

// GetUserPermissions 返回用户的权限键并集。
func (s *rbacService) GetUserPermissions(userID uint) (map[string]struct{}, error) {
	perms, err := s.roleRepo.FindPermissionsByUser(userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p.Key] = struct{}{}
	}
	return set, nil
}

// CheckPermissions 校验用户是否持有 required 中的全部权限键。
// 系统所有者经由 owner 角色天然持有全部权限，无需特判。
func (s *rbacService) CheckPermissions(userID uint, required ...string) (bool, error) {
	set, err := s.GetUserPermissions(userID)
	if err != nil {
		return false, err
	}
	for _, key := range required {
		if _, ok := set[key]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// AssignDefaultRole 将普通用户角色绑定到新注册的用户上。
func (s *rbacService) AssignDefaultRole(userID uint) error {
	role, err := s.roleRepo.FindRoleByName(RoleUser)
	if err != nil {
		return err
	}
	return s.roleRepo.ReplaceUserRoles(userID, []uint{role.ID})
}

// AssignRoles 替换用户的角色集合，系统所有者受保护。
func (s *rbacService) AssignRoles(userID uint, roleIDs []uint) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if user.IsOwner {
		return ErrOwnerProtected
	}
	return s.roleRepo.ReplaceUserRoles(userID, roleIDs)
}

// DeleteUsers 批量删除用户，列表中包含系统所有者时整体拒绝。
func (s *rbacService) DeleteUsers(ids []uint) error {
	for _, id := range ids {
		user, err := s.userRepo.FindByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return err
		}
		if user.IsOwner {
			return ErrOwnerProtected
		}
	}
	return s.userRepo.DeleteBatch(ids)
}

// ListUsers 分页返回用户列表及总数。
func (s *rbacService) ListUsers(page, pageSize int) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.userRepo.FindWithPagination((page-1)*pageSize, pageSize)
}

// ListRoles 返回所有角色。
func (s *rbacService) ListRoles() ([]model.Role, error) {
	return s.roleRepo.FindAllRoles()
}

// ListPermissions 返回所有权限。
func (s *rbacService) ListPermissions() ([]model.Permission, error) {
	return s.roleRepo.FindAllPermissions()
}

// SeedDefaults 幂等地创建权限全集与内置角色。
func (s *rbacService) SeedDefaults() error {
	// 1. 权限全集
	keyToID := make(map[string]uint, len(allPermissionKeys))
	existing, err := s.roleRepo.FindAllPermissions()
	if err != nil {
		return err
	}
	for _, p := range existing {
		keyToID[p.Key] = p.ID
	}
	for _, key := range allPermissionKeys {
		if _, ok := keyToID[key]; ok {
			continue
		}
		perm := &model.Permission{Key: key}
		if err := s.roleRepo.CreatePermission(perm); err != nil {
			return err
		}
		keyToID[key] = perm.ID
	}

	// 2. owner 角色：持有全部权限
	if err := s.ensureRole(RoleOwner, "系统所有者角色", allPermissionKeys, keyToID); err != nil {
		return err
	}
	// 3. user 角色：默认权限
	if err := s.ensureRole(RoleUser, "普通用户角色", defaultUserPermissionKeys, keyToID); err != nil {
		return err
	}

	log.Info("RBAC 种子数据初始化完成")
	return nil
}

// ensureRole 幂等地创建内置角色并同步其权限集合。
func (s *rbacService) ensureRole(name, description string, permKeys []string, keyToID map[string]uint) error {
	role, err := s.roleRepo.FindRoleByName(name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role = &model.Role{Name: name, Description: description, IsSystem: true}
		if err := s.roleRepo.CreateRole(role); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	permIDs := make([]uint, 0, len(permKeys))
	for _, key := range permKeys {
		permIDs = append(permIDs, keyToID[key])
	}
	return s.roleRepo.ReplaceRolePermissions(role.ID, permIDs)
}

// EnsureOwner 幂等地创建系统所有者账号并绑定 owner 角色。
func (s *rbacService) EnsureOwner(username, email, password string) error {
	user, err := s.userRepo.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hashed, herr := hash.HashPassword(password)
		if herr != nil {
			return herr
		}
		user = &model.User{
			Username: username,
			Email:    email,
			Password: hashed,
			IsOwner:  true,
		}
		if err := s.userRepo.Create(user); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	role, err := s.roleRepo.FindRoleByName(RoleOwner)
	if err != nil {
		return err
	}
	return s.roleRepo.ReplaceUserRoles(user.ID, []uint{role.ID})
}
