package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"yunpan-go/internal/model"
	"yunpan-go/internal/service"
	"yunpan-go/pkg/log"
)

// AdminHandler 负责处理存储源管理、用户管理与角色管理的 API 请求。
type AdminHandler struct {
	storageService service.StorageService
	rbacService    service.RBACService
}

// NewAdminHandler 创建一个新的 AdminHandler 实例。
func NewAdminHandler(storageService service.StorageService, rbacService service.RBACService) *AdminHandler {
	return &AdminHandler{
		storageService: storageService,
		rbacService:    rbacService,
	}
}

// StorageSourceRequest 定义了创建/更新存储源 API 的请求体结构。
type StorageSourceRequest struct {
	Name       string                  `json:"name" binding:"required"`
	Type       model.StorageSourceType `json:"type" binding:"required"`
	Config     string                  `json:"config"`
	Priority   int                     `json:"priority"`
	QuotaLimit int64                   `json:"quotaLimit" binding:"required,gt=0"`
	IsActive   *bool                   `json:"isActive"`
}

// CreateStorageSource 创建一个存储源，配置在创建时即做解析
// 校验与连通性探测。
func (h *AdminHandler) CreateStorageSource(c *gin.Context) {
	var req StorageSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("CreateStorageSource: Invalid request payload, error: %v", err)
		badRequest(c, "无效的请求负载：名称、类型和配额上限不能为空")
		return
	}

	source := &model.StorageSource{
		Name:       req.Name,
		Type:       req.Type,
		Config:     req.Config,
		Priority:   req.Priority,
		QuotaLimit: req.QuotaLimit,
		IsActive:   true,
	}
	if req.IsActive != nil {
		source.IsActive = *req.IsActive
	}

	if err := h.storageService.CreateSource(c.Request.Context(), source); err != nil {
		log.Warnf("CreateStorageSource: 创建存储源失败: name=%s, err=%v", req.Name, err)
		fail(c, err)
		return
	}
	ok(c, source)
}

// UpdateStorageSource 更新存储源配置。
func (h *AdminHandler) UpdateStorageSource(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req StorageSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求负载：名称、类型和配额上限不能为空")
		return
	}

	source, err := h.storageService.GetSource(id)
	if err != nil {
		fail(c, err)
		return
	}
	source.Name = req.Name
	source.Type = req.Type
	source.Config = req.Config
	source.Priority = req.Priority
	source.QuotaLimit = req.QuotaLimit
	if req.IsActive != nil {
		source.IsActive = *req.IsActive
	}

	if err := h.storageService.UpdateSource(c.Request.Context(), source); err != nil {
		fail(c, err)
		return
	}
	ok(c, source)
}

// DeleteStorageSource 删除存储源，仍被文件引用时拒绝。
func (h *AdminHandler) DeleteStorageSource(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	if err := h.storageService.DeleteSource(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// ListStorageSources 返回全部存储源及各自的配额水位。
func (h *AdminHandler) ListStorageSources(c *gin.Context) {
	sources, err := h.storageService.ListSources()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, sources)
}

// TestStorageSource 对存储源做一次连通性探测并同步激活状态。
func (h *AdminHandler) TestStorageSource(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	healthy, err := h.storageService.TestSource(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"healthy": healthy})
}

// ListUsers 分页返回用户列表。
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	users, total, err := h.rbacService.ListUsers(page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"users": users, "total": total})
}

// DeleteUsersRequest 定义了批量删除用户 API 的请求体结构。
type DeleteUsersRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// DeleteUsers 批量删除用户，列表中包含系统所有者时整体拒绝。
func (h *AdminHandler) DeleteUsers(c *gin.Context) {
	var req DeleteUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求负载：ids 不能为空")
		return
	}
	if err := h.rbacService.DeleteUsers(req.IDs); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// AssignRolesRequest 定义了分配角色 API 的请求体结构。
type AssignRolesRequest struct {
	RoleIDs []uint `json:"roleIds" binding:"required"`
}

// AssignRoles 替换指定用户的角色集合。
func (h *AdminHandler) AssignRoles(c *gin.Context) {
	userID, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req AssignRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求负载：roleIds 不能为空")
		return
	}
	if err := h.rbacService.AssignRoles(userID, req.RoleIDs); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// ListRoles 返回所有角色及各自的权限。
func (h *AdminHandler) ListRoles(c *gin.Context) {
	roles, err := h.rbacService.ListRoles()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, roles)
}

// ListPermissions 返回权限全集。
func (h *AdminHandler) ListPermissions(c *gin.Context) {
	perms, err := h.rbacService.ListPermissions()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, perms)
}
