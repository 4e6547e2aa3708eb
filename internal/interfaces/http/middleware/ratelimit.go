// Package middleware 提供 HTTP 中间件
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"xhs-content-ai-api/internal/config"
	"xhs-content-ai-api/internal/infrastructure/persistence/redis"
	"xhs-content-ai-api/pkg/errors"
	"xhs-content-ai-api/pkg/logger"
)

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error)
}

// RateLimit 按客户端 IP 与路由限流，每分钟最多 RequestsPerMinute 次
// limiter 为 nil（未启用 Redis）时不限流
func RateLimit(cfg config.RateLimitConfig, limiter RateLimiter) gin.HandlerFunc {
	if !cfg.Enabled || limiter == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	limit := cfg.RequestsPerMinute
	if limit <= 0 {
		limit = 30
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		key := redis.BuildRateLimitKey(c.ClientIP(), path)

		allowed, err := limiter.Allow(ctx, key, limit, time.Minute)
		if err != nil {
			// 限流器故障时放行
			logger.Warn(ctx, "rate limiter unavailable", "error", err.Error())
			c.Next()
			return
		}

		if !allowed {
			c.Header("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":     errors.CodeTooManyRequests,
				"success":  false,
				"error":    "请求过于频繁，请稍后再试",
				"trace_id": c.GetString("trace_id"),
			})
			return
		}

		if remaining, err := limiter.Remaining(ctx, key, limit, time.Minute); err == nil {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}

		c.Next()
	}
}
