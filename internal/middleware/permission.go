package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yunpan-go/internal/model"
	"yunpan-go/internal/service"
	"yunpan-go/pkg/log"
)

// CurrentUser 从上下文中取出 AuthMiddleware 写入的用户对象。
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}

// RequirePermissions 创建一个权限校验中间件：用户的全部角色的
// 权限并集必须包含列出的每一个权限键，缺任意一个即拒绝。
// 此中间件必须在 AuthMiddleware 之后使用。
func RequirePermissions(rbacService service.RBACService, required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "无法获取用户信息"})
			return
		}

		allowed, err := rbacService.CheckPermissions(user.ID, required...)
		if err != nil {
			log.Errorf("[Permission] 权限校验失败: userID=%d, err=%v", user.ID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "权限校验失败"})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": 403, "message": "权限不足"})
			return
		}

		c.Next()
	}
}
