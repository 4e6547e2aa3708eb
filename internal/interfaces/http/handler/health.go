// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"xhs-content-ai-api/internal/infrastructure/llm"
	"xhs-content-ai-api/internal/infrastructure/persistence/redis"
)

// ProviderStatus 暴露激活的搜索服务商
type ProviderStatus interface {
	ActiveProvider() string
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	version string
	redis   *redis.Client
	text    *llm.Client
	search  ProviderStatus
}

// NewHealthHandler 创建健康检查处理器，redisClient 为 nil 表示未启用缓存
func NewHealthHandler(version string, redisClient *redis.Client, text *llm.Client, search ProviderStatus) *HealthHandler {
	return &HealthHandler{
		version: version,
		redis:   redisClient,
		text:    text,
		search:  search,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Provider  string `json:"provider,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 健康检查接口
// @Summary 健康检查
// @Description 检查服务健康状态
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

// Ready 就绪检查接口
// 文本生成配置无效时不可就绪；Redis 与联网搜索为可选依赖，只报告状态
// @Summary 就绪检查
// @Description 检查服务是否可以接收流量
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]*readinessCheck{
		"text_generation": {Status: "unknown"},
		"redis":           {Status: "disabled"},
		"search":          {Status: "unavailable"},
	}

	ready := true

	// 文本生成（必需）
	if h.text == nil {
		checks["text_generation"].Status = "missing"
		checks["text_generation"].Error = "text generation client not configured"
		ready = false
	} else if err := h.text.Validate(); err != nil {
		checks["text_generation"].Status = "error"
		checks["text_generation"].Error = err.Error()
		ready = false
	} else {
		name, _ := h.text.ActiveProvider()
		checks["text_generation"].Status = "ok"
		checks["text_generation"].Provider = name
	}

	// Redis（可选，不影响就绪态）
	if h.redis != nil {
		start := time.Now()
		err := h.redis.HealthCheck(ctx)
		checks["redis"].LatencyMs = time.Since(start).Milliseconds()
		if err != nil {
			checks["redis"].Status = "degraded"
			checks["redis"].Error = err.Error()
		} else {
			checks["redis"].Status = "ok"
		}
	}

	// 联网搜索（可选）
	if h.search != nil {
		if name := h.search.ActiveProvider(); name != "" {
			checks["search"].Status = "ok"
			checks["search"].Provider = name
		}
	}

	resp := readinessResponse{
		Status: "ok",
		Checks: checks,
	}
	if !ready {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Live 存活检查接口
// @Summary 存活检查
// @Description 检查服务是否存活
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
	})
}
