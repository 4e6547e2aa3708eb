package llm_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xhs-content-ai-api/internal/config"
	"xhs-content-ai-api/internal/infrastructure/llm"
	apperrors "xhs-content-ai-api/pkg/errors"
)

func float64Ptr(f float64) *float64 { return &f }

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("no providers", func(t *testing.T) {
		t.Parallel()

		_, _, err := llm.Resolve(config.TextGenerationConfig{ActiveProvider: "gemini"})

		require.ErrorIs(t, err, llm.ErrNoProviders)
		assert.True(t, apperrors.IsConfigError(err))
		appErr := apperrors.AsAppError(err)
		assert.Equal(t, "未找到任何文本生成服务商配置。", appErr.Message)
		assert.Contains(t, appErr.Detail, "解决方案")
	})

	t.Run("active provider missing lists available", func(t *testing.T) {
		t.Parallel()

		_, _, err := llm.Resolve(config.TextGenerationConfig{
			ActiveProvider: "claude",
			Providers: map[string]config.TextProviderConfig{
				"openai": {APIKey: "k"},
				"gemini": {APIKey: "k"},
			},
		})

		require.ErrorIs(t, err, llm.ErrProviderNotFound)
		assert.Equal(t, "未找到文本生成服务商配置: claude\n可用的服务商: gemini, openai", apperrors.AsAppError(err).Message)
	})

	t.Run("missing api key", func(t *testing.T) {
		t.Parallel()

		_, _, err := llm.Resolve(config.TextGenerationConfig{
			ActiveProvider: "gemini",
			Providers:      map[string]config.TextProviderConfig{"gemini": {Type: llm.TypeGoogleGemini}},
		})

		require.ErrorIs(t, err, llm.ErrMissingAPIKey)
		appErr := apperrors.AsAppError(err)
		assert.Equal(t, "文本服务商 gemini 未配置 API Key", appErr.Message)
		assert.Equal(t, "解决方案：在系统设置页面编辑该服务商，填写 API Key", appErr.Detail)
	})

	t.Run("unsupported type", func(t *testing.T) {
		t.Parallel()

		_, _, err := llm.Resolve(config.TextGenerationConfig{
			ActiveProvider: "x",
			Providers:      map[string]config.TextProviderConfig{"x": {Type: "anthropic", APIKey: "k"}},
		})

		assert.True(t, errors.Is(err, llm.ErrUnsupportedType))
	})

	t.Run("fills defaults and type from name", func(t *testing.T) {
		t.Parallel()

		name, p, err := llm.Resolve(config.TextGenerationConfig{
			Providers: map[string]config.TextProviderConfig{"google_gemini": {APIKey: "k"}},
		})

		require.NoError(t, err)
		assert.Equal(t, "google_gemini", name)
		assert.Equal(t, llm.TypeGoogleGemini, p.Type)
		assert.Equal(t, "gemini-2.0-flash-exp", p.Model)
		require.NotNil(t, p.Temperature)
		assert.InDelta(t, 1.0, *p.Temperature, 1e-9)
		assert.Equal(t, 8000, p.MaxOutputTokens)
	})

	t.Run("keeps explicit zero temperature", func(t *testing.T) {
		t.Parallel()

		_, p, err := llm.Resolve(config.TextGenerationConfig{
			ActiveProvider: "gemini",
			Providers: map[string]config.TextProviderConfig{"gemini": {
				Type:        llm.TypeGoogleGemini,
				APIKey:      "k",
				Temperature: float64Ptr(0),
			}},
		})

		require.NoError(t, err)
		require.NotNil(t, p.Temperature)
		assert.Zero(t, *p.Temperature)
		assert.Zero(t, p.TemperatureOr(llm.DefaultTemperature))
	})

	t.Run("keeps explicit settings", func(t *testing.T) {
		t.Parallel()

		_, p, err := llm.Resolve(config.TextGenerationConfig{
			ActiveProvider: "deepseek",
			Providers: map[string]config.TextProviderConfig{"deepseek": {
				Type:            llm.TypeOpenAICompatible,
				APIKey:          "k",
				BaseURL:         "https://api.deepseek.com/v1",
				Model:           "deepseek-chat",
				Temperature:     float64Ptr(0.7),
				MaxOutputTokens: 4096,
			}},
		})

		require.NoError(t, err)
		assert.Equal(t, "deepseek-chat", p.Model)
		assert.InDelta(t, 0.7, p.TemperatureOr(llm.DefaultTemperature), 1e-9)
		assert.Equal(t, 4096, p.MaxOutputTokens)
	})
}
