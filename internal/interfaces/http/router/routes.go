// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes 注册 /api 路由
func RegisterAPIRoutes(api *gin.RouterGroup, h Handlers) {
	// 大纲
	if h.Outline != nil {
		api.POST("/outline", h.Outline.GenerateOutline)
		api.POST("/outline/stream", h.Outline.StreamOutline)
		api.POST("/outline/modify/stream", h.Outline.ModifyOutlineStream)
	}

	// 文案
	if h.Copywriting != nil {
		api.POST("/copywriting/stream", h.Copywriting.StreamCopywriting)
	}

	// 联网搜索
	if h.Search != nil {
		search := api.Group("/search")
		{
			search.GET("", h.Search.Search)
			search.POST("", h.Search.Search)
			search.POST("/reload", h.Search.Reload)
			search.GET("/providers", h.Search.Providers)
		}
	}
}
