package eino

import (
	"context"
	"strings"
)

type llmCtxKey string

const (
	llmCtxKeyWorkflow llmCtxKey = "llm_workflow"
	llmCtxKeyProvider llmCtxKey = "llm_provider"
)

// WithWorkflowProvider 在 context 中记录调用方工作流与服务商，供回调打点使用
func WithWorkflowProvider(ctx context.Context, workflow, provider string) context.Context {
	if w := strings.TrimSpace(workflow); w != "" {
		ctx = context.WithValue(ctx, llmCtxKeyWorkflow, w)
	}
	if p := strings.TrimSpace(provider); p != "" {
		ctx = context.WithValue(ctx, llmCtxKeyProvider, p)
	}
	return ctx
}

func WorkflowFromContext(ctx context.Context) string {
	return stringValue(ctx, llmCtxKeyWorkflow)
}

func ProviderFromContext(ctx context.Context) string {
	return stringValue(ctx, llmCtxKeyProvider)
}

func stringValue(ctx context.Context, key llmCtxKey) string {
	if ctx == nil {
		return "unknown"
	}
	s, ok := ctx.Value(key).(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
