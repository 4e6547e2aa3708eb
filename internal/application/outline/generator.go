package outline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"xhs-content-ai-api/internal/application/research"
	"xhs-content-ai-api/internal/application/stream"
	"xhs-content-ai-api/internal/domain/entity"
	"xhs-content-ai-api/internal/workflow/port"
	"xhs-content-ai-api/internal/workflow/prompt"
	apperrors "xhs-content-ai-api/pkg/errors"
	"xhs-content-ai-api/pkg/logger"
	"xhs-content-ai-api/pkg/metrics"
	"xhs-content-ai-api/pkg/tracer"
)

// 生成类型，用于指标与日志
const (
	KindOutline = "outline"
	KindModify  = "outline_modify"
)

const (
	messageGenerating = "正在生成大纲..."
	messageSearching  = "正在联网搜索相关资料..."
	messageModifying  = "正在分析修改指令..."

	defaultSearchMaxResults = 5
)

var (
	// ErrEmptyTopic 主题为空
	ErrEmptyTopic = apperrors.New(apperrors.CodeInvalidParam, "参数错误：topic 不能为空。")
	// ErrEmptyOutline 待修改的大纲为空
	ErrEmptyOutline = apperrors.New(apperrors.CodeOutlineEmpty, "当前大纲为空，无法修改。请先生成大纲内容。")
)

// Researcher 联网搜索
type Researcher interface {
	Search(ctx context.Context, query string, maxResults int) entity.ResearchOutcome
}

// GenerateInput 生成大纲的输入
type GenerateInput struct {
	Topic     string
	Images    [][]byte
	UseSearch bool
}

// ModifyInput 修改大纲的输入
type ModifyInput struct {
	Topic       string
	Current     entity.Outline
	Instruction string
}

// Completion 大纲生成 complete 事件数据
type Completion struct {
	Outline     string        `json:"outline"`
	Pages       []entity.Page `json:"pages"`
	HasResearch bool          `json:"has_research"`
}

// ModifyCompletion 大纲修改 complete 事件数据
type ModifyCompletion struct {
	Outline string        `json:"outline"`
	Pages   []entity.Page `json:"pages"`
	Summary string        `json:"summary"`
}

// Result 非流式生成结果
type Result struct {
	Success     bool          `json:"success"`
	Outline     string        `json:"outline"`
	Pages       []entity.Page `json:"pages"`
	HasResearch bool          `json:"has_research"`
	Error       string        `json:"error,omitempty"`
}

// Generator 大纲生成服务
type Generator struct {
	text       port.TextGenerator
	prompts    *prompt.Registry
	researcher Researcher

	searchMaxResults int
}

// GeneratorOption 生成服务选项
type GeneratorOption func(*Generator)

// WithResearcher 启用联网搜索
func WithResearcher(r Researcher) GeneratorOption {
	return func(g *Generator) { g.researcher = r }
}

// WithSearchMaxResults 设置联网搜索的结果数
func WithSearchMaxResults(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.searchMaxResults = n
		}
	}
}

// NewGenerator 创建大纲生成服务
func NewGenerator(text port.TextGenerator, prompts *prompt.Registry, opts ...GeneratorOption) *Generator {
	g := &Generator{
		text:             text,
		prompts:          prompts,
		searchMaxResults: defaultSearchMaxResults,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Stream 流式生成大纲
func (g *Generator) Stream(ctx context.Context, in GenerateInput) <-chan stream.Event {
	if strings.TrimSpace(in.Topic) == "" {
		return stream.Single(stream.ErrorEvent(ErrEmptyTopic))
	}

	ctx = context.WithValue(ctx, logger.GenerationIDKey, uuid.NewString())
	ctx, span := tracer.StartGeneration(ctx, KindOutline, in.Topic)
	span.SetAttributes(
		attribute.Bool("outline.use_search", in.UseSearch),
		attribute.Int("outline.images", len(in.Images)),
	)
	logger.Info(ctx, "outline generation started",
		"topic", logger.Preview(in.Topic, 50),
		"images", len(in.Images),
		"use_search", in.UseSearch,
	)

	start := stream.Progress{Status: "starting", Message: messageGenerating}
	if in.UseSearch && g.researcher != nil {
		start.Message = messageSearching
	}

	var hasResearch bool
	open := func(ctx context.Context) (stream.TextSource, error) {
		req, researched, err := g.buildOutlineRequest(ctx, in)
		if err != nil {
			return nil, err
		}
		hasResearch = researched
		return g.text.GenerateText(ctx, req)
	}
	finalize := func(text string) any {
		pages := ParsePages(text)
		metrics.OutlinePages.Observe(float64(len(pages)))
		return Completion{Outline: text, Pages: pages, HasResearch: hasResearch}
	}

	return stream.Instrument(ctx, KindOutline, span, stream.Run(ctx, open, start, finalize))
}

// Generate 非流式生成大纲
func (g *Generator) Generate(ctx context.Context, in GenerateInput) (*Result, error) {
	if strings.TrimSpace(in.Topic) == "" {
		return failed(ErrEmptyTopic), ErrEmptyTopic
	}

	ctx = context.WithValue(ctx, logger.GenerationIDKey, uuid.NewString())
	ctx, span := tracer.StartGeneration(ctx, KindOutline, in.Topic)
	defer span.End()

	req, researched, err := g.buildOutlineRequest(ctx, in)
	if err != nil {
		return failed(err), err
	}
	src, err := g.text.GenerateText(ctx, req)
	if err != nil {
		logger.Error(ctx, "outline generation failed", err)
		return failed(err), err
	}
	text, err := stream.Collect(ctx, src)
	if err != nil {
		logger.Error(ctx, "outline generation failed", err)
		return failed(err), err
	}

	pages := ParsePages(text)
	metrics.OutlinePages.Observe(float64(len(pages)))
	logger.Info(ctx, "outline generated", "pages", len(pages), "has_research", researched)

	return &Result{
		Success:     true,
		Outline:     text,
		Pages:       pages,
		HasResearch: researched,
	}, nil
}

// ModifyStream 按修改指令流式重写大纲
func (g *Generator) ModifyStream(ctx context.Context, in ModifyInput) <-chan stream.Event {
	raw := ResolveRaw(in.Current)
	if strings.TrimSpace(raw) == "" {
		return stream.Single(stream.ErrorEvent(ErrEmptyOutline))
	}

	originalCount := len(in.Current.Pages)
	if originalCount == 0 {
		originalCount = len(ParsePages(raw))
	}

	ctx = context.WithValue(ctx, logger.GenerationIDKey, uuid.NewString())
	ctx, span := tracer.StartGeneration(ctx, KindModify, in.Topic)
	span.SetAttributes(attribute.Int("outline.original_pages", originalCount))
	logger.Info(ctx, "outline modification started",
		"topic", logger.Preview(in.Topic, 50),
		"instruction", logger.Preview(in.Instruction, 100),
		"pages", originalCount,
	)

	open := func(ctx context.Context) (stream.TextSource, error) {
		system, user, err := g.prompts.Render(ctx, prompt.PromptOutlineModifyV1, map[string]any{
			"topic":           strings.TrimSpace(in.Topic),
			"current_outline": raw,
			"instruction":     strings.TrimSpace(in.Instruction),
		})
		if err != nil {
			return nil, err
		}
		return g.text.GenerateText(ctx, port.TextRequest{
			Workflow: KindModify,
			System:   system,
			Prompt:   user,
		})
	}
	finalize := func(text string) any {
		pages := ParsePages(text)
		summary := SummarizeModification(originalCount, len(pages))
		logger.Info(ctx, "outline modified", "summary", summary)
		return ModifyCompletion{Outline: text, Pages: pages, Summary: summary}
	}

	start := stream.Progress{Status: "starting", Message: messageModifying}
	return stream.Instrument(ctx, KindModify, span, stream.Run(ctx, open, start, finalize))
}

// buildOutlineRequest 执行可选的联网搜索并渲染提示词
func (g *Generator) buildOutlineRequest(ctx context.Context, in GenerateInput) (port.TextRequest, bool, error) {
	var researchBlock string
	var researched bool
	if in.UseSearch && g.researcher != nil {
		outcome := g.researcher.Search(ctx, strings.TrimSpace(in.Topic), g.searchMaxResults)
		switch {
		case !outcome.Success:
			logger.Warn(ctx, "research skipped", "error", outcome.Error)
		case outcome.HasResearch:
			researchBlock = research.BuildResearchBlock(outcome)
			researched = true
			logger.Info(ctx, "research attached", "summary", outcome.SearchSummary)
		}
	}

	system, user, err := g.prompts.Render(ctx, prompt.PromptOutlineV1, map[string]any{
		"topic":      strings.TrimSpace(in.Topic),
		"research":   researchBlock,
		"image_hint": imageHint(len(in.Images)),
	})
	if err != nil {
		return port.TextRequest{}, false, err
	}

	return port.TextRequest{
		Workflow: KindOutline,
		System:   system,
		Prompt:   user,
		Images:   in.Images,
	}, researched, nil
}

func imageHint(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("【参考图片】\n用户上传了 %d 张参考图片，请结合图片中的内容与风格规划页面。", n)
}

func failed(err error) *Result {
	return &Result{Success: false, Error: stream.Message(err)}
}
