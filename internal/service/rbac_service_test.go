package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yunpan-go/internal/model"
	"yunpan-go/internal/repository"
)

func newRBACEnv(t *testing.T) (RBACService, repository.UserRepository, repository.RoleRepository) {
	t.Helper()
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	svc := NewRBACService(roleRepo, userRepo)
	require.NoError(t, svc.SeedDefaults())
	return svc, userRepo, roleRepo
}

func TestSeedDefaultsIdempotent(t *testing.T) {
	svc, _, roleRepo := newRBACEnv(t)

	perms, err := roleRepo.FindAllPermissions()
	require.NoError(t, err)
	count := len(perms)
	assert.Equal(t, len(allPermissionKeys), count)

	require.NoError(t, svc.SeedDefaults())
	perms, err = roleRepo.FindAllPermissions()
	require.NoError(t, err)
	assert.Len(t, perms, count)

	roles, err := svc.ListRoles()
	require.NoError(t, err)
	assert.Len(t, roles, 2)
}

func TestCheckPermissionsRequiresAll(t *testing.T) {
	svc, userRepo, _ := newRBACEnv(t)

	user := &model.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, userRepo.Create(user))
	require.NoError(t, svc.AssignDefaultRole(user.ID))

	ok, err := svc.CheckPermissions(user.ID, PermFileUpload, PermFolderManage)
	require.NoError(t, err)
	assert.True(t, ok)

	// 普通用户没有 storage.manage，全量匹配失败
	ok, err = svc.CheckPermissions(user.ID, PermFileUpload, PermStorageManage)
	require.NoError(t, err)
	assert.False(t, ok)

	// 空的权限要求视为放行
	ok, err = svc.CheckPermissions(user.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPermissionsAreUnionOfRoles(t *testing.T) {
	svc, userRepo, roleRepo := newRBACEnv(t)

	user := &model.User{Username: "bob", Email: "bob@example.com", Password: "x"}
	require.NoError(t, userRepo.Create(user))

	ownerRole, err := roleRepo.FindRoleByName(RoleOwner)
	require.NoError(t, err)
	userRole, err := roleRepo.FindRoleByName(RoleUser)
	require.NoError(t, err)

	require.NoError(t, svc.AssignRoles(user.ID, []uint{userRole.ID, ownerRole.ID}))

	perms, err := svc.GetUserPermissions(user.ID)
	require.NoError(t, err)
	assert.Len(t, perms, len(allPermissionKeys))
}

func TestOwnerIsProtected(t *testing.T) {
	svc, userRepo, roleRepo := newRBACEnv(t)

	require.NoError(t, svc.EnsureOwner("owner", "owner@example.com", "secret"))
	owner, err := userRepo.FindByUsername("owner")
	require.NoError(t, err)
	assert.True(t, owner.IsOwner)

	regular := &model.User{Username: "carol", Email: "carol@example.com", Password: "x"}
	require.NoError(t, userRepo.Create(regular))

	userRole, err := roleRepo.FindRoleByName(RoleUser)
	require.NoError(t, err)

	// 不能改动所有者的角色
	err = svc.AssignRoles(owner.ID, []uint{userRole.ID})
	assert.ErrorIs(t, err, ErrOwnerProtected)

	// 批量删除中混入所有者时整体拒绝
	err = svc.DeleteUsers([]uint{regular.ID, owner.ID})
	assert.ErrorIs(t, err, ErrOwnerProtected)
	_, err = userRepo.FindByID(regular.ID)
	assert.NoError(t, err)

	// 不含所有者的删除正常执行
	require.NoError(t, svc.DeleteUsers([]uint{regular.ID}))
	_, err = userRepo.FindByID(regular.ID)
	assert.Error(t, err)
}

func TestEnsureOwnerIdempotent(t *testing.T) {
	svc, userRepo, _ := newRBACEnv(t)

	require.NoError(t, svc.EnsureOwner("owner", "owner@example.com", "secret"))
	require.NoError(t, svc.EnsureOwner("owner", "owner@example.com", "secret"))

	users, total, err := userRepo.FindWithPagination(0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, users, 1)

	perms, err := svc.GetUserPermissions(users[0].ID)
	require.NoError(t, err)
	assert.Len(t, perms, len(allPermissionKeys))
}
