// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"xhs-content-ai-api/internal/application/outline"
	"xhs-content-ai-api/internal/application/research"
	"xhs-content-ai-api/internal/config"
	"xhs-content-ai-api/internal/infrastructure/llm"
	"xhs-content-ai-api/internal/infrastructure/persistence/redis"
	"xhs-content-ai-api/internal/interfaces/http/handler"
	"xhs-content-ai-api/internal/interfaces/http/middleware"
	"xhs-content-ai-api/internal/workflow/prompt"
	"xhs-content-ai-api/pkg/logger"
)

// ProvideRedisClient 提供可选的 Redis 客户端
// 未启用或不可达时返回 nil，搜索缓存与限流随之关闭
func ProvideRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, search cache and rate limit disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideSearchCache 提供搜索结果缓存，SearchTTL 为 0 时不缓存
func ProvideSearchCache(cfg *config.Config, client *redis.Client) *redis.SearchCache {
	if client == nil || cfg.Cache.Redis.SearchTTL <= 0 {
		return nil
	}
	return redis.NewSearchCache(redis.NewCache(client), cfg.Cache.Redis.SearchTTL)
}

// ProvideRateLimiter 提供限流器，Redis 不可用时返回 nil 接口
func ProvideRateLimiter(client *redis.Client) middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}

// ProvideTextClient 提供文本生成客户端
func ProvideTextClient(ctx context.Context, cfg *config.Config) *llm.Client {
	client := llm.NewClient(cfg.TextGeneration)
	if err := client.Validate(); err != nil {
		// 配置错误在每次生成时返回给调用方
		logger.Warn(ctx, "text generation config invalid", "error", err.Error())
	}
	return client
}

// ProvidePromptRegistry 提供提示词注册表
func ProvidePromptRegistry() *prompt.Registry {
	return prompt.NewRegistry()
}

// ProvideOrchestrator 提供联网搜索编排器
func ProvideOrchestrator(ctx context.Context, cfg *config.Config, cache *redis.SearchCache) *research.Orchestrator {
	var opts []research.Option
	if cache != nil {
		opts = append(opts, research.WithCache(cache))
	}
	return research.NewOrchestrator(ctx, cfg.Search, opts...)
}

// ProvideOutlineGenerator 提供大纲生成服务
func ProvideOutlineGenerator(cfg *config.Config, text *llm.Client, prompts *prompt.Registry, orch *research.Orchestrator) *outline.Generator {
	opts := []outline.GeneratorOption{outline.WithResearcher(orch)}
	if active, ok := cfg.Search.Active(); ok {
		opts = append(opts, outline.WithSearchMaxResults(active.MaxResults))
	}
	return outline.NewGenerator(text, prompts, opts...)
}

// ProvideOutlineHandler 提供大纲处理器
func ProvideOutlineHandler(cfg *config.Config, gen *outline.Generator) *handler.OutlineHandler {
	return handler.NewOutlineHandler(gen, cfg.Server.HTTP.MaxUploadSize)
}

// ProvideSearchHandler 提供搜索处理器，重载时从默认配置目录读取
func ProvideSearchHandler(orch *research.Orchestrator, cache *redis.SearchCache) *handler.SearchHandler {
	load := func() (config.SearchConfig, error) {
		cfg, err := config.Load()
		if err != nil {
			return config.SearchConfig{}, err
		}
		return cfg.Search, nil
	}
	var opts []handler.SearchHandlerOption
	if cache != nil {
		opts = append(opts, handler.WithCacheInvalidator(cache))
	}
	return handler.NewSearchHandler(orch, load, opts...)
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(cfg *config.Config, client *redis.Client, text *llm.Client, orch *research.Orchestrator) *handler.HealthHandler {
	return handler.NewHealthHandler(cfg.App.Version, client, text, orch)
}
