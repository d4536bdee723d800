package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"yunpan-go/internal/middleware"
	"yunpan-go/internal/service"
	"yunpan-go/pkg/log"
)

// ShareHandler 负责处理分享相关的 API 请求，
// 包含创建方的管理接口和访问方的匿名公开接口。
type ShareHandler struct {
	shareService service.ShareService
	fileService  service.FileService
}

// NewShareHandler 创建一个新的 ShareHandler 实例。
func NewShareHandler(shareService service.ShareService, fileService service.FileService) *ShareHandler {
	return &ShareHandler{shareService: shareService, fileService: fileService}
}

// Create 创建一个分享链接。
func (h *ShareHandler) Create(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		badRequest(c, "无法获取用户信息")
		return
	}

	var req service.CreateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求负载：目标类型和目标 ID 不能为空")
		return
	}

	share, err := h.shareService.CreateShare(c.Request.Context(), req, user.ID)
	if err != nil {
		log.Warnf("CreateShare: 创建分享失败: userID=%d, err=%v", user.ID, err)
		fail(c, err)
		return
	}
	ok(c, gin.H{
		"id":         share.ID,
		"shareToken": share.ShareToken,
		"expiresAt":  share.ExpiresAt,
	})
}

// List 返回当前用户创建的全部分享。
func (h *ShareHandler) List(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		badRequest(c, "无法获取用户信息")
		return
	}
	shares, err := h.shareService.ListShares(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, shares)
}

// Deactivate 停用分享，保留记录与计数。
func (h *ShareHandler) Deactivate(c *gin.Context) {
	shareID, valid := parseID(c, "id")
	if !valid {
		return
	}
	user, exists := middleware.CurrentUser(c)
	if !exists {
		badRequest(c, "无法获取用户信息")
		return
	}
	if err := h.shareService.DeactivateShare(c.Request.Context(), shareID, user.ID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// Delete 删除分享及其快照。
func (h *ShareHandler) Delete(c *gin.Context) {
	shareID, valid := parseID(c, "id")
	if !valid {
		return
	}
	user, exists := middleware.CurrentUser(c)
	if !exists {
		badRequest(c, "无法获取用户信息")
		return
	}
	if err := h.shareService.DeleteShare(c.Request.Context(), shareID, user.ID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// Resolve 是匿名访问方浏览分享内容的公开接口，
// 加密分享通过 password 查询参数携带口令。
func (h *ShareHandler) Resolve(c *gin.Context) {
	shareToken := c.Param("token")
	view, err := h.shareService.ResolveShare(c.Request.Context(), shareToken, c.Query("password"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, view)
}

// DownloadFile 是匿名访问方下载分享内文件的公开接口。
// 文件必须在分享的快照里，且分享未超下载限额。
func (h *ShareHandler) DownloadFile(c *gin.Context) {
	shareToken := c.Param("token")
	fileID, valid := parseID(c, "fileId")
	if !valid {
		return
	}

	file, err := h.shareService.AuthorizeFileDownload(c.Request.Context(), shareToken, c.Query("password"), fileID)
	if err != nil {
		fail(c, err)
		return
	}

	rc, _, err := h.fileService.Download(c.Request.Context(), file.ID)
	if err != nil {
		fail(c, err)
		return
	}
	defer rc.Close()

	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(file.OriginalName))
	c.DataFromReader(http.StatusOK, file.Size, contentType, rc, map[string]string{
		"Content-Disposition": disposition,
	})
}
