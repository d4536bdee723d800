package handler

import (
	"github.com/gin-gonic/gin"

	"yunpan-go/internal/middleware"
	"yunpan-go/internal/service"
	"yunpan-go/pkg/log"
)

// UserHandler 负责处理所有与用户账号相关的 API 请求。
type UserHandler struct {
	userService service.UserService
	rbacService service.RBACService
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService service.UserService, rbacService service.RBACService) *UserHandler {
	return &UserHandler{userService: userService, rbacService: rbacService}
}

// RegisterRequest 定义了用户注册 API 的请求体结构。
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register 处理用户注册请求。
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Register: Invalid request payload, error: %v", err)
		badRequest(c, "无效的请求负载：用户名、邮箱和密码不能为空")
		return
	}

	user, err := h.userService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		log.Warnf("Register: User registration failed for '%s', error: %v", req.Username, err)
		fail(c, err)
		return
	}

	log.Infof("User '%s' registered successfully", user.Username)
	ok(c, gin.H{"id": user.ID, "username": user.Username})
}

// LoginRequest 定义了用户登录 API 的请求体结构。
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理用户登录请求。
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Login: Invalid request payload, error: %v", err)
		badRequest(c, "无效的请求负载：用户名和密码不能为空")
		return
	}

	accessToken, refreshToken, err := h.userService.Login(req.Username, req.Password)
	if err != nil {
		log.Warnf("Login: User authentication failed for '%s', error: %v", req.Username, err)
		fail(c, err)
		return
	}

	log.Infof("User '%s' logged in successfully", req.Username)
	ok(c, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// RefreshTokenRequest 定义了刷新令牌 API 的请求体结构。
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken 处理令牌刷新请求。
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "无效的请求负载：refreshToken 不能为空")
		return
	}

	accessToken, refreshToken, err := h.userService.RefreshToken(req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// Profile 返回当前登录用户的信息及其权限键集合。
func (h *UserHandler) Profile(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		badRequest(c, "无法获取用户信息")
		return
	}

	perms, err := h.rbacService.GetUserPermissions(user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	keys := make([]string, 0, len(perms))
	for k := range perms {
		keys = append(keys, k)
	}

	ok(c, gin.H{
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"isOwner":     user.IsOwner,
		"roles":       user.Roles,
		"permissions": keys,
	})
}
