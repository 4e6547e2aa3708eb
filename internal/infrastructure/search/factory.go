package search

import (
	"context"
	"fmt"
	"sort"

	"xhs-content-ai-api/internal/config"
	apperrors "xhs-content-ai-api/pkg/errors"
	"xhs-content-ai-api/pkg/logger"
)

// SupportedTypes 支持的服务商类型
func SupportedTypes() []string {
	return []string{TypeDuckDuckGo, TypeTavily, TypeExa, TypeGoogleCustom}
}

// New 根据配置中的 type 创建服务商
func New(cfg config.SearchProviderConfig, opts ...Option) (Provider, error) {
	switch cfg.Type {
	case TypeDuckDuckGo:
		return NewDuckDuckGo(cfg, opts...), nil
	case TypeTavily:
		p, err := NewTavily(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	case TypeExa:
		p, err := NewExa(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	case TypeGoogleCustom:
		return NewGoogleCustom(cfg, opts...), nil
	default:
		return nil, apperrors.Config(
			fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Type),
			fmt.Sprintf("不支持的搜索引擎类型: %s", cfg.Type),
			fmt.Sprintf("解决方案：将 type 设置为以下之一: %v", SupportedTypes()),
		)
	}
}

// NewAll 创建所有可用的服务商，构造失败或未启用的条目被跳过
func NewAll(ctx context.Context, configs map[string]config.SearchProviderConfig, opts ...Option) map[string]Provider {
	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	providers := make(map[string]Provider, len(configs))
	for _, name := range names {
		cfg := configs[name]
		if cfg.Type == "" {
			cfg.Type = name
		}
		p, err := New(cfg, opts...)
		if err != nil {
			logger.Warn(ctx, "skip search provider", "provider", name, "error", err.Error())
			continue
		}
		if !p.Available() {
			logger.Warn(ctx, "search provider unavailable", "provider", name)
			continue
		}
		providers[name] = p
		logger.Info(ctx, "search provider initialized", "provider", name, "type", cfg.Type)
	}
	return providers
}

func missingKeyError(provider string) error {
	return apperrors.Config(
		ErrMissingAPIKey,
		fmt.Sprintf("%s 需要 api_key 配置", provider),
		"解决方案：在 search.providers 中为该服务商填写 api_key",
	)
}
