package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"yunpan-go/pkg/database"
	"yunpan-go/pkg/log"
)

// ShareRateLimiter 对单个分享令牌做每分钟固定窗口限流，防止
// 匿名访问方对分享口令做暴力尝试。limitPerMinute 为 0 时不限制。
// Redis 不可用时放行，限流是保护措施而不是功能依赖。
func ShareRateLimiter(limitPerMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limitPerMinute <= 0 {
			c.Next()
			return
		}

		shareToken := c.Param("token")
		if shareToken == "" {
			c.Next()
			return
		}

		window := time.Now().Unix() / 60
		key := fmt.Sprintf("share:ratelimit:%s:%d", shareToken, window)

		count, err := database.RDB.Incr(c.Request.Context(), key).Result()
		if err != nil {
			log.Warnf("[RateLimit] Redis 计数失败，放行请求: token=%s, err=%v", shareToken, err)
			c.Next()
			return
		}
		if count == 1 {
			database.RDB.Expire(c.Request.Context(), key, 2*time.Minute)
		}
		if count > int64(limitPerMinute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"code": 429, "message": "访问过于频繁，请稍后再试"})
			return
		}

		c.Next()
	}
}
