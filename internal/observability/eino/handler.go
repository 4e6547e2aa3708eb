package eino

import (
	"context"
	"errors"
	"io"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"xhs-content-ai-api/pkg/metrics"
)

// startTimeKey 用于在 Context 中存储调用开始时间
type startTimeKey struct{}

// Usage 一次调用的 Token 用量
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// StartCall 开启 llm.generate span 并记录开始时间
func StartCall(ctx context.Context, modelName string, info *einocb.RunInfo) context.Context {
	ctx = context.WithValue(ctx, startTimeKey{}, time.Now())

	attrs := []attribute.KeyValue{
		attribute.String("eino.workflow", WorkflowFromContext(ctx)),
		attribute.String("llm.provider", ProviderFromContext(ctx)),
		attribute.String("llm.model", modelName),
	}
	if info != nil {
		attrs = append(attrs,
			attribute.String("eino.node_name", info.Name),
			attribute.String("eino.type", info.Type),
		)
	}

	ctx, _ = otel.Tracer("eino").Start(ctx, "llm.generate", trace.WithAttributes(attrs...))
	return ctx
}

// FinishCall 上报调用指标并结束 StartCall 开启的 span，err 为空视为成功
func FinishCall(ctx context.Context, modelName string, usage *Usage, err error) {
	workflow := WorkflowFromContext(ctx)
	provider := ProviderFromContext(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.LLMCallTotal.WithLabelValues(workflow, provider, modelName, status).Inc()
	if d := elapsedSeconds(ctx); d > 0 {
		metrics.LLMCallDuration.WithLabelValues(workflow, provider, modelName).Observe(d)
	}

	span := trace.SpanFromContext(ctx)
	if usage != nil {
		metrics.LLMTokensUsed.WithLabelValues(workflow, provider, modelName, "prompt").Add(float64(usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(workflow, provider, modelName, "completion").Add(float64(usage.CompletionTokens))
		span.SetAttributes(
			attribute.Int("llm.prompt_tokens", usage.PromptTokens),
			attribute.Int("llm.completion_tokens", usage.CompletionTokens),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// newChatModelCallbackHandler 创建大模型调用的回调处理器
// 流式输出在后台读取副本，直到结束时才上报用量
func newChatModelCallbackHandler() *cbtemplate.ModelCallbackHandler {
	return &cbtemplate.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			return StartCall(ctx, modelNameFromInput(input), info)
		},

		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			FinishCall(ctx, modelNameFromOutput(output), usageFromOutput(output), nil)
			return ctx
		},

		OnEndWithStreamOutput: func(ctx context.Context, info *einocb.RunInfo, output *schema.StreamReader[*model.CallbackOutput]) context.Context {
			go func() {
				defer output.Close()

				var (
					modelName string
					usage     *Usage
				)
				for {
					chunk, err := output.Recv()
					if errors.Is(err, io.EOF) {
						break
					}
					if err != nil {
						FinishCall(ctx, modelName, usage, err)
						return
					}
					if name := modelNameFromOutput(chunk); name != "" {
						modelName = name
					}
					if u := usageFromOutput(chunk); u != nil {
						usage = u
					}
				}
				FinishCall(ctx, modelName, usage, nil)
			}()
			return ctx
		},

		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			modelName := ""
			if info != nil {
				modelName = info.Type
			}
			FinishCall(ctx, modelName, nil, err)
			return ctx
		},
	}
}

// elapsedSeconds 计算从 StartCall 到当前的耗时（秒），无开始时间时返回 0
func elapsedSeconds(ctx context.Context) float64 {
	start, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok || start.IsZero() {
		return 0
	}
	return time.Since(start).Seconds()
}

func modelNameFromInput(in *model.CallbackInput) string {
	if in == nil || in.Config == nil {
		return ""
	}
	return in.Config.Model
}

func modelNameFromOutput(out *model.CallbackOutput) string {
	if out == nil || out.Config == nil {
		return ""
	}
	return out.Config.Model
}

func usageFromOutput(out *model.CallbackOutput) *Usage {
	if out == nil || out.TokenUsage == nil {
		return nil
	}
	return &Usage{
		PromptTokens:     out.TokenUsage.PromptTokens,
		CompletionTokens: out.TokenUsage.CompletionTokens,
	}
}
