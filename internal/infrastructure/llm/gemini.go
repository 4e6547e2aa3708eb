package llm

import (
	"context"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"sync"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"google.golang.org/genai"

	"xhs-content-ai-api/internal/application/stream"
	"xhs-content-ai-api/internal/config"
	einoobs "xhs-content-ai-api/internal/observability/eino"
	"xhs-content-ai-api/internal/workflow/port"
)

// geminiBackend 基于 genai SDK 的 Gemini 后端
type geminiBackend struct {
	client *genai.Client
}

func newGeminiBackend(ctx context.Context, cfg config.TextProviderConfig) (*geminiBackend, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiBackend{client: client}, nil
}

func (b *geminiBackend) Stream(ctx context.Context, req port.TextRequest) (stream.TextSource, error) {
	contents, err := BuildContents(req)
	if err != nil {
		return nil, err
	}

	ctx = einoobs.StartCall(ctx, req.Model, &einocb.RunInfo{
		Name:      "gemini",
		Type:      "Gemini",
		Component: components.ComponentOfChatModel,
	})

	seq := b.client.Models.GenerateContentStream(ctx, req.Model, contents, BuildGenerateConfig(req))
	next, stop := iter.Pull2(seq)
	return &geminiSource{ctx: ctx, model: req.Model, next: next, stop: stop}, nil
}

// BuildContents 将提示词与图片组装为一条用户消息
func BuildContents(req port.TextRequest) ([]*genai.Content, error) {
	parts := make([]*genai.Part, 0, len(req.Images)+1)
	for i, img := range req.Images {
		mime, err := ImageMIME(img)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		parts = append(parts, genai.NewPartFromBytes(img, mime))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil
}

// BuildGenerateConfig 生成参数
func BuildGenerateConfig(req port.TextRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.Temperature != nil {
		t := *req.Temperature
		cfg.Temperature = &t
	}
	if req.MaxOutputTokens != nil && *req.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(*req.MaxOutputTokens)
	}
	return cfg
}

// geminiSource 将 genai 的 iter.Seq2 转为拉取式 TextSource
type geminiSource struct {
	ctx   context.Context
	model string
	next  func() (*genai.GenerateContentResponse, error, bool)
	stop  func()

	usage *einoobs.Usage
	once  sync.Once
}

func (s *geminiSource) Recv() (string, error) {
	for {
		resp, err, ok := s.next()
		if !ok {
			s.finish(nil)
			return "", io.EOF
		}
		if err != nil {
			s.finish(err)
			return "", err
		}
		if resp == nil {
			continue
		}
		if u := resp.UsageMetadata; u != nil {
			s.usage = &einoobs.Usage{
				PromptTokens:     int(u.PromptTokenCount),
				CompletionTokens: int(u.CandidatesTokenCount),
			}
		}
		if text := responseText(resp); text != "" {
			return text, nil
		}
	}
}

func (s *geminiSource) Close() {
	s.stop()
	s.finish(s.ctx.Err())
}

func (s *geminiSource) finish(err error) {
	s.once.Do(func() {
		einoobs.FinishCall(s.ctx, s.model, s.usage, err)
	})
}

// responseText 拼接首个候选中的文本片段，忽略思考片段
func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}
