// Package middleware 提供 HTTP 中间件
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"xhs-content-ai-api/pkg/errors"
	"xhs-content-ai-api/pkg/logger"
)

// Recovery Panic 恢复中间件
// SSE 响应已开始写出时只能中断连接，无法再返回 JSON
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					fmt.Errorf("%v", r),
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				if c.Writer.Written() {
					c.Abort()
					return
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":     errors.CodeInternalError,
					"success":  false,
					"error":    "服务内部错误，请稍后重试",
					"trace_id": c.GetString("trace_id"),
				})
			}
		}()

		c.Next()
	}
}
