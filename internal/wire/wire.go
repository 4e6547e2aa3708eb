//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"xhs-content-ai-api/internal/application/copywriting"
	"xhs-content-ai-api/internal/config"
	"xhs-content-ai-api/internal/infrastructure/llm"
	"xhs-content-ai-api/internal/interfaces/http/handler"
	"xhs-content-ai-api/internal/interfaces/http/router"
	"xhs-content-ai-api/internal/workflow/port"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RedisSet,
		GenerationSet,
		RouterSet,
	)
	return nil, nil, nil
}

// RedisSet Redis 提供者集合（可选）
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	ProvideSearchCache,
	ProvideRateLimiter,
)

// GenerationSet 文本生成与联网搜索
var GenerationSet = wire.NewSet(
	ProvideTextClient,
	wire.Bind(new(port.TextGenerator), new(*llm.Client)),
	ProvidePromptRegistry,
	ProvideOrchestrator,
	ProvideOutlineGenerator,
	copywriting.NewGenerator,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	ProvideOutlineHandler,
	handler.NewCopywritingHandler,
	ProvideSearchHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)
