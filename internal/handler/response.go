// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"yunpan-go/internal/service"
	"yunpan-go/pkg/log"
)

// ok 返回统一格式的成功响应。
func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "成功",
		"data":    data,
	})
}

// fail 把业务错误映射为 HTTP 状态码并返回统一格式的错误响应。
// 未被识别的错误按服务器内部错误处理，不向外泄露细节。
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "服务器内部错误"

	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidFolder),
		errors.Is(err, service.ErrCyclicMove),
		errors.Is(err, service.ErrDuplicateName):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, service.ErrInvalidSharePassword):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrOwnerProtected):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, service.ErrShareExpired):
		status = http.StatusGone
		message = err.Error()
	case errors.Is(err, service.ErrQuotaExceeded),
		errors.Is(err, service.ErrNoActiveSource):
		status = http.StatusInsufficientStorage
		message = err.Error()
	case errors.Is(err, service.ErrShareLimitReached):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, service.ErrSourceInUse):
		status = http.StatusConflict
		message = err.Error()
	default:
		log.Errorf("[Handler] 未分类的业务错误: %v", err)
	}

	c.JSON(status, gin.H{
		"code":    status,
		"message": message,
	})
}

// badRequest 返回参数错误响应。
func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    http.StatusBadRequest,
		"message": message,
	})
}
