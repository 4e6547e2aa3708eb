// Package llm 提供文本生成客户端：按配置选择 OpenAI 兼容（eino）或 Gemini（genai）后端
package llm

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"xhs-content-ai-api/internal/config"
	apperrors "xhs-content-ai-api/pkg/errors"
)

// 服务商类型
const (
	TypeGoogleGemini     = "google_gemini"
	TypeOpenAI           = "openai"
	TypeOpenAICompatible = "openai_compatible"
)

const (
	DefaultModel           = "gemini-2.0-flash-exp"
	DefaultTemperature     = 1.0
	DefaultMaxOutputTokens = 8000
)

var (
	// ErrNoProviders 未配置任何服务商
	ErrNoProviders = errors.New("llm: no text providers configured")
	// ErrProviderNotFound 激活的服务商不存在
	ErrProviderNotFound = errors.New("llm: active text provider not found")
	// ErrMissingAPIKey 服务商缺少 API Key
	ErrMissingAPIKey = errors.New("llm: missing api key")
	// ErrUnsupportedType 不支持的服务商类型
	ErrUnsupportedType = errors.New("llm: unsupported provider type")
)

// Resolve 校验文本生成配置并返回激活的服务商，缺省字段补齐默认值
func Resolve(cfg config.TextGenerationConfig) (string, config.TextProviderConfig, error) {
	if len(cfg.Providers) == 0 {
		return "", config.TextProviderConfig{}, apperrors.Config(
			ErrNoProviders,
			"未找到任何文本生成服务商配置。",
			"解决方案：\n1. 在系统设置页面添加文本生成服务商\n2. 或手动编辑配置文件中的 text_generation.providers",
		)
	}

	name := cfg.ActiveProvider
	if name == "" {
		name = TypeGoogleGemini
	}
	p, ok := cfg.Providers[name]
	if !ok {
		return "", config.TextProviderConfig{}, apperrors.Config(
			fmt.Errorf("%w: %s", ErrProviderNotFound, name),
			fmt.Sprintf("未找到文本生成服务商配置: %s\n可用的服务商: %s", name, strings.Join(providerNames(cfg), ", ")),
			"解决方案：在系统设置中选择一个可用的服务商",
		)
	}

	if strings.TrimSpace(p.APIKey) == "" {
		return "", config.TextProviderConfig{}, apperrors.Config(
			fmt.Errorf("%w: %s", ErrMissingAPIKey, name),
			fmt.Sprintf("文本服务商 %s 未配置 API Key", name),
			"解决方案：在系统设置页面编辑该服务商，填写 API Key",
		)
	}

	if p.Type == "" {
		p.Type = name
	}
	switch p.Type {
	case TypeGoogleGemini, TypeOpenAI, TypeOpenAICompatible:
	default:
		return "", config.TextProviderConfig{}, apperrors.Config(
			fmt.Errorf("%w: %s", ErrUnsupportedType, p.Type),
			fmt.Sprintf("不支持的文本服务商类型: %s", p.Type),
			fmt.Sprintf("解决方案：将 type 设置为 %s、%s 或 %s", TypeGoogleGemini, TypeOpenAI, TypeOpenAICompatible),
		)
	}

	if p.Model == "" && p.Type == TypeGoogleGemini {
		p.Model = DefaultModel
	}
	if p.Temperature == nil {
		t := DefaultTemperature
		p.Temperature = &t
	}
	if p.MaxOutputTokens <= 0 {
		p.MaxOutputTokens = DefaultMaxOutputTokens
	}
	return name, p, nil
}

func providerNames(cfg config.TextGenerationConfig) []string {
	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
