package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"xhs-content-ai-api/internal/application/research"
	"xhs-content-ai-api/internal/config"
	"xhs-content-ai-api/internal/domain/entity"
	"xhs-content-ai-api/internal/interfaces/http/dto"
	"xhs-content-ai-api/pkg/logger"
)

// Searcher 联网搜索编排
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) entity.ResearchOutcome
	Reload(ctx context.Context, cfg config.SearchConfig)
	ActiveProvider() string
	Providers() []research.ProviderInfo
}

// SearchConfigLoader 从磁盘重新读取搜索配置
type SearchConfigLoader func() (config.SearchConfig, error)

// CacheInvalidator 配置变更后清理搜索缓存
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// SearchHandler 联网搜索调试与配置管理
type SearchHandler struct {
	searcher   Searcher
	loadConfig SearchConfigLoader
	cache      CacheInvalidator
}

// SearchHandlerOption 搜索处理器选项
type SearchHandlerOption func(*SearchHandler)

// WithCacheInvalidator 重载配置时清空搜索缓存
func WithCacheInvalidator(c CacheInvalidator) SearchHandlerOption {
	return func(h *SearchHandler) { h.cache = c }
}

// NewSearchHandler 创建搜索处理器
func NewSearchHandler(searcher Searcher, loadConfig SearchConfigLoader, opts ...SearchHandlerOption) *SearchHandler {
	h := &SearchHandler{searcher: searcher, loadConfig: loadConfig}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type providersResponse struct {
	Active    string                  `json:"active"`
	Providers []research.ProviderInfo `json:"providers"`
}

// Search 执行一次联网搜索
// @Summary 联网搜索
// @Tags Search
// @Accept json
// @Produce json
// @Param body body dto.SearchRequest true "查询"
// @Success 200 {object} dto.Response[entity.ResearchOutcome]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/search [post]
func (h *SearchHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := dto.BindSearchRequest(c)
	if err != nil || strings.TrimSpace(req.Query) == "" {
		dto.BadRequest(c, dto.MsgQueryRequired)
		return
	}
	if req.MaxResults <= 0 {
		req.MaxResults = entity.DefaultSearchMaxResults
	}

	outcome := h.searcher.Search(ctx, strings.TrimSpace(req.Query), req.MaxResults)
	logger.Info(ctx, "search served",
		"query", logger.Preview(req.Query, 50),
		"success", outcome.Success,
		"items", len(outcome.ResearchContent),
	)
	dto.Success(c, outcome)
}

// Reload 从磁盘重新加载搜索配置
// @Summary 重载搜索配置
// @Tags Search
// @Produce json
// @Success 200 {object} dto.Response[providersResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/search/reload [post]
func (h *SearchHandler) Reload(c *gin.Context) {
	ctx := c.Request.Context()
	if h.loadConfig == nil {
		dto.ServiceUnavailable(c, "search config reload not configured")
		return
	}

	cfg, err := h.loadConfig()
	if err != nil {
		logger.Error(ctx, "failed to reload search config", err)
		dto.ErrorWithDetail(c, http.StatusInternalServerError, "加载搜索配置失败", &dto.ErrorDetail{
			Details: err.Error(),
		})
		return
	}

	h.searcher.Reload(ctx, cfg)
	if h.cache != nil {
		if err := h.cache.InvalidateAll(ctx); err != nil {
			logger.Warn(ctx, "failed to invalidate search cache", "error", err.Error())
		}
	}

	dto.Success(c, h.providers())
}

// Providers 列出已配置的搜索服务商
// @Summary 搜索服务商列表
// @Tags Search
// @Produce json
// @Success 200 {object} dto.Response[providersResponse]
// @Router /api/search/providers [get]
func (h *SearchHandler) Providers(c *gin.Context) {
	dto.Success(c, h.providers())
}

func (h *SearchHandler) providers() providersResponse {
	list := h.searcher.Providers()
	if list == nil {
		list = []research.ProviderInfo{}
	}
	return providersResponse{
		Active:    h.searcher.ActiveProvider(),
		Providers: list,
	}
}
