package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"xhs-content-ai-api/internal/application/stream"
	"xhs-content-ai-api/internal/config"
	"xhs-content-ai-api/internal/workflow/port"
)

// openAIBackend 基于 eino openai ChatModel 的后端，兼容 OpenAI 协议的服务均可使用
type openAIBackend struct {
	name  string
	model model.BaseChatModel
}

func newOpenAIBackend(ctx context.Context, name string, cfg config.TextProviderConfig) (*openAIBackend, error) {
	maxTokens := cfg.MaxOutputTokens
	temperature := float32(cfg.TemperatureOr(DefaultTemperature))
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", name, err)
	}
	return &openAIBackend{name: name, model: chatModel}, nil
}

func (b *openAIBackend) Stream(ctx context.Context, req port.TextRequest) (stream.TextSource, error) {
	msgs, err := BuildMessages(req)
	if err != nil {
		return nil, err
	}

	// 组件单独调用时需要显式初始化回调，全局回调才会生效
	ctx = einocb.InitCallbacks(ctx, &einocb.RunInfo{
		Name:      b.name,
		Type:      "OpenAI",
		Component: components.ComponentOfChatModel,
	})

	sr, err := b.model.Stream(ctx, msgs, modelOptions(req)...)
	if err != nil {
		return nil, err
	}
	return &messageSource{sr: sr}, nil
}

// BuildMessages 将请求转为 eino 消息，图片以 data URL 附加到用户消息
func BuildMessages(req port.TextRequest) ([]*schema.Message, error) {
	msgs := make([]*schema.Message, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		msgs = append(msgs, schema.SystemMessage(req.System))
	}

	if len(req.Images) == 0 {
		return append(msgs, schema.UserMessage(req.Prompt)), nil
	}

	parts := make([]schema.ChatMessagePart, 0, len(req.Images)+1)
	parts = append(parts, schema.ChatMessagePart{Type: schema.ChatMessagePartTypeText, Text: req.Prompt})
	for i, img := range req.Images {
		url, err := ImageDataURL(img)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		parts = append(parts, schema.ChatMessagePart{
			Type:     schema.ChatMessagePartTypeImageURL,
			ImageURL: &schema.ChatMessageImageURL{URL: url},
		})
	}
	return append(msgs, &schema.Message{Role: schema.User, MultiContent: parts}), nil
}

func modelOptions(req port.TextRequest) []model.Option {
	opts := make([]model.Option, 0, 3)
	if req.Temperature != nil {
		opts = append(opts, model.WithTemperature(*req.Temperature))
	}
	if req.MaxOutputTokens != nil {
		opts = append(opts, model.WithMaxTokens(*req.MaxOutputTokens))
	}
	if strings.TrimSpace(req.Model) != "" {
		opts = append(opts, model.WithModel(strings.TrimSpace(req.Model)))
	}
	return opts
}

// messageSource 将 eino StreamReader 适配为 TextSource
// 末尾可能出现只含 Usage 的空消息，由聚合器跳过
type messageSource struct {
	sr *schema.StreamReader[*schema.Message]
}

func (s *messageSource) Recv() (string, error) {
	msg, err := s.sr.Recv()
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", nil
	}
	return msg.Content, nil
}

func (s *messageSource) Close() { s.sr.Close() }
