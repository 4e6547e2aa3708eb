package copywriting

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"xhs-content-ai-api/internal/application/stream"
	"xhs-content-ai-api/internal/domain/entity"
	"xhs-content-ai-api/internal/workflow/port"
	"xhs-content-ai-api/internal/workflow/prompt"
	apperrors "xhs-content-ai-api/pkg/errors"
	"xhs-content-ai-api/pkg/logger"
	"xhs-content-ai-api/pkg/metrics"
	"xhs-content-ai-api/pkg/tracer"
)

// Kind 生成类型
const Kind = "copywriting"

// ErrEmptyInput 主题或大纲为空
var ErrEmptyInput = apperrors.New(apperrors.CodeInvalidParam, "参数错误：topic 和 outline 不能为空")

// Input 文案生成输入
type Input struct {
	Topic   string
	Outline entity.Outline
}

// Completion complete 事件数据
type Completion struct {
	Raw string `json:"raw"`
	entity.CopywritingResult
}

// Generator 文案生成服务
type Generator struct {
	text    port.TextGenerator
	prompts *prompt.Registry
}

// NewGenerator 创建文案生成服务
func NewGenerator(text port.TextGenerator, prompts *prompt.Registry) *Generator {
	return &Generator{text: text, prompts: prompts}
}

// Stream 流式生成文案，结束时解析出标题、正文与标签
func (g *Generator) Stream(ctx context.Context, in Input) <-chan stream.Event {
	if strings.TrimSpace(in.Topic) == "" || in.Outline.IsEmpty() {
		return stream.Single(stream.ErrorEvent(ErrEmptyInput))
	}

	ctx = context.WithValue(ctx, logger.GenerationIDKey, uuid.NewString())
	ctx, span := tracer.StartGeneration(ctx, Kind, in.Topic)
	logger.Info(ctx, "copywriting generation started", "topic", logger.Preview(in.Topic, 50))

	open := func(ctx context.Context) (stream.TextSource, error) {
		system, user, err := g.prompts.Render(ctx, prompt.PromptCopywritingV1, map[string]any{
			"topic":   strings.TrimSpace(in.Topic),
			"outline": OutlineDigest(in.Outline),
		})
		if err != nil {
			return nil, err
		}
		return g.text.GenerateText(ctx, port.TextRequest{
			Workflow: Kind,
			System:   system,
			Prompt:   user,
		})
	}
	finalize := func(text string) any {
		result, tier := Parse(text)
		metrics.CopywritingParseTier.WithLabelValues(string(tier)).Inc()
		if tier != TierJSON {
			logger.Warn(ctx, "copywriting parsed without json block", "tier", string(tier))
		}
		logger.Debug(ctx, "copywriting parsed",
			"title", logger.Preview(result.Title, 30),
			"titles", len(result.Titles),
			"tags", len(result.Tags),
		)
		return Completion{Raw: text, CopywritingResult: result}
	}

	start := stream.Progress{Status: "starting", Message: "正在生成文案..."}
	return stream.Instrument(ctx, Kind, span, stream.Run(ctx, open, start, finalize))
}
