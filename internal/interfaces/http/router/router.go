// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"xhs-content-ai-api/internal/config"
	"xhs-content-ai-api/internal/interfaces/http/handler"
	"xhs-content-ai-api/internal/interfaces/http/middleware"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Health      *handler.HealthHandler
	Outline     *handler.OutlineHandler
	Copywriting *handler.CopywritingHandler
	Search      *handler.SearchHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	limiter  middleware.RateLimiter
}

// New 创建新的路由器，limiter 为 nil 时不限流
func New(cfg *config.Config, handlers Handlers, limiter middleware.RateLimiter) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if cfg.Server.HTTP.MaxUploadSize > 0 {
		engine.MaxMultipartMemory = cfg.Server.HTTP.MaxUploadSize
	}

	r := &Router{
		engine:   engine,
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// systemPaths 不计入追踪与业务指标的系统端点
func (r *Router) systemPaths() []string {
	return []string{"/health", "/ready", "/live", r.cfg.Observability.Metrics.Path}
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.CORS(r.cfg.Security.CORS))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name, r.systemPaths()...))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics(r.systemPaths()...))
	}
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	if h := r.handlers.Health; h != nil {
		r.engine.GET("/health", h.Health)
		r.engine.GET("/ready", h.Ready)
		r.engine.GET("/live", h.Live)
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	api := r.engine.Group("/api")
	api.Use(middleware.RateLimit(r.cfg.Security.RateLimit, r.limiter))
	RegisterAPIRoutes(api, r.handlers)
}
