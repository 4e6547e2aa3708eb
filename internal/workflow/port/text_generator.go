package port

import (
	"context"

	"xhs-content-ai-api/internal/application/stream"
)

// TextRequest 一次文本生成请求
// 零值字段使用服务商配置中的默认值
type TextRequest struct {
	// Workflow 调用方标识，用于指标与追踪（outline/outline_modify/copywriting）
	Workflow string

	System string
	Prompt string
	Images [][]byte

	Model           string
	Temperature     *float32
	MaxOutputTokens *int
}

// TextGenerator 定义应用层对文本生成服务的最小依赖（port）。
type TextGenerator interface {
	GenerateText(ctx context.Context, req TextRequest) (stream.TextSource, error)
}

// TextGeneratorFunc 函数适配器
type TextGeneratorFunc func(ctx context.Context, req TextRequest) (stream.TextSource, error)

// GenerateText 实现 TextGenerator
func (f TextGeneratorFunc) GenerateText(ctx context.Context, req TextRequest) (stream.TextSource, error) {
	return f(ctx, req)
}
