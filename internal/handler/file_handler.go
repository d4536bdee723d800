package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"yunpan-go/internal/middleware"
	"yunpan-go/internal/service"
	"yunpan-go/pkg/log"
)

// FileHandler 负责处理文件与目录树相关的 API 请求。
type FileHandler struct {
	fileService service.FileService
}

// NewFileHandler 创建一个新的 FileHandler 实例。
func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// parseID 解析路径参数中的数据库 ID，0 和负数一律拒绝。
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "无效的 ID: "+raw)
		return 0, false
	}
	return uint(id), true
}

// folderRef 是请求体中对目标目录的引用，nil 表示根目录。
type folderRef struct {
	FolderID *uint `json:"folderId"`
}

// validFolderRef 拒绝显式传 0 的目录引用，根目录必须用省略表示。
func validFolderRef(c *gin.Context, id *uint) bool {
	if id != nil && *id == 0 {
		badRequest(c, "无效的目录 ID: 根目录请省略 folderId")
		return false
	}
	return true
}

// Upload 处理文件上传请求，multipart 表单的 file 字段为文件内容，
// 可选的 folderId 字段指定目标目录。
func (h *FileHandler) Upload(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		badRequest(c, "无法获取用户信息")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "缺少上传文件")
		return
	}

	var folderID *uint
	if raw := c.PostForm("folderId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			badRequest(c, "无效的目录 ID: "+raw)
			return
		}
		v := uint(id)
		folderID = &v
	}

	src, err := fileHeader.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer src.Close()

	file, err := h.fileService.Upload(
		c.Request.Context(),
		src,
		fileHeader.Filename,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
		c.PostForm("md5"),
		folderID,
		user.ID,
	)
	if err != nil {
		log.Warnf("Upload: 文件上传失败: name=%s, err=%v", fileHeader.Filename, err)
		fail(c, err)
		return
	}
	ok(c, file)
}

// Download 处理文件下载。携带 direct=1 时优先返回后端直链，
// 后端不支持直链则回退为流式传输。
func (h *FileHandler) Download(c *gin.Context) {
	fileID, valid := parseID(c, "id")
	if !valid {
		return
	}

	if c.Query("direct") == "1" {
		directURL, err := h.fileService.GetDirectURL(c.Request.Context(), fileID)
		if err != nil {
			fail(c, err)
			return
		}
		if directURL != "" {
			c.Redirect(http.StatusFound, directURL)
			return
		}
	}

	rc, file, err := h.fileService.Download(c.Request.Context(), fileID)
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

// Delete 处理文件删除请求。
func (h *FileHandler) Delete(c *gin.Context) {
	fileID, valid := parseID(c, "id")
	if !valid {
		return
	}
	if err := h.fileService.DeleteFile(c.Request.Context(), fileID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// Copy 复制文件到目标目录。
func (h *FileHandler) Copy(c *gin.Context) {
	fileID, valid := parseID(c, "id")
	if !valid {
		return
	}
	user, exists := middleware.CurrentUser(c)
	if !exists {
		badRequest(c, "无法获取用户信息")
		return
	}

	var req folderRef
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求负载")
		return
	}
	if !validFolderRef(c, req.FolderID) {
		return
	}

	copied, err := h.fileService.CopyFile(c.Request.Context(), fileID, req.FolderID, user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, copied)
}

// Move 移动文件到目标目录。
func (h *FileHandler) Move(c *gin.Context) {
	fileID, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req folderRef
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求负载")
		return
	}
	if !validFolderRef(c, req.FolderID) {
		return
	}

	if err := h.fileService.MoveFile(c.Request.Context(), fileID, req.FolderID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// renameRequest 是重命名操作的请求体。
type renameRequest struct {
	Name string `json:"name" binding:"required"`
}

// Rename 更新文件的展示名称。
func (h *FileHandler) Rename(c *gin.Context) {
	fileID, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求负载：名称不能为空")
		return
	}

	if err := h.fileService.RenameFile(c.Request.Context(), fileID, req.Name); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// Search 按名称关键字检索当前用户的文件。
func (h *FileHandler) Search(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		badRequest(c, "无法获取用户信息")
		return
	}
	keyword := c.Query("keyword")
	if keyword == "" {
		badRequest(c, "检索关键字不能为空")
		return
	}

	files, err := h.fileService.SearchFiles(c.Request.Context(), keyword, user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, files)
}

// createFolderRequest 是创建目录的请求体。
type createFolderRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID *uint  `json:"parentId"`
}

// CreateFolder 创建一个目录。
func (h *FileHandler) CreateFolder(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		badRequest(c, "无法获取用户信息")
		return
	}

	var req createFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求负载：目录名称不能为空")
		return
	}
	if !validFolderRef(c, req.ParentID) {
		return
	}

	folder, err := h.fileService.CreateFolder(c.Request.Context(), req.Name, req.ParentID, user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, folder)
}

// RenameFolder 重命名目录并级联更新后代路径。
func (h *FileHandler) RenameFolder(c *gin.Context) {
	folderID, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求负载：名称不能为空")
		return
	}

	if err := h.fileService.RenameFolder(c.Request.Context(), folderID, req.Name); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// MoveFolder 移动目录到目标目录下。
func (h *FileHandler) MoveFolder(c *gin.Context) {
	folderID, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req folderRef
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求负载")
		return
	}
	if !validFolderRef(c, req.FolderID) {
		return
	}

	if err := h.fileService.MoveFolder(c.Request.Context(), folderID, req.FolderID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// CopyFolder 递归复制目录子树到目标目录下。
func (h *FileHandler) CopyFolder(c *gin.Context) {
	folderID, valid := parseID(c, "id")
	if !valid {
		return
	}
	user, exists := middleware.CurrentUser(c)
	if !exists {
		badRequest(c, "无法获取用户信息")
		return
	}
	var req folderRef
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求负载")
		return
	}
	if !validFolderRef(c, req.FolderID) {
		return
	}

	mirror, err := h.fileService.CopyFolder(c.Request.Context(), folderID, req.FolderID, user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, mirror)
}

// DeleteFolder 递归删除目录子树。
func (h *FileHandler) DeleteFolder(c *gin.Context) {
	folderID, valid := parseID(c, "id")
	if !valid {
		return
	}
	if err := h.fileService.DeleteFolder(c.Request.Context(), folderID); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

// List 列出目录内容：folderId 省略表示根目录，文件支持分页排序。
func (h *FileHandler) List(c *gin.Context) {
	var folderID *uint
	if raw := c.Query("folderId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			badRequest(c, "无效的目录 ID: "+raw)
			return
		}
		v := uint(id)
		folderID = &v
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	result, err := h.fileService.List(
		c.Request.Context(),
		folderID,
		page,
		pageSize,
		c.DefaultQuery("sortBy", "createdAt"),
		c.DefaultQuery("order", "desc"),
	)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

// DownloadFolder 把目录子树打包成 zip 下载。
func (h *FileHandler) DownloadFolder(c *gin.Context) {
	folderID, valid := parseID(c, "id")
	if !valid {
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s.zip", url.PathEscape(c.Param("id"))))
	if err := h.fileService.DownloadFolder(c.Request.Context(), folderID, c.Writer); err != nil {
		// 响应头可能已发出，只能记日志
		log.Errorf("DownloadFolder: 打包下载失败: folderID=%d, err=%v", folderID, err)
	}
}
