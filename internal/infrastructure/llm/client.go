package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"xhs-content-ai-api/internal/application/stream"
	"xhs-content-ai-api/internal/config"
	einoobs "xhs-content-ai-api/internal/observability/eino"
	"xhs-content-ai-api/internal/workflow/port"
	"xhs-content-ai-api/pkg/logger"
)

// Backend 单个服务商的流式文本生成实现
// 传入的请求已补齐模型、温度与最大输出长度
type Backend interface {
	Stream(ctx context.Context, req port.TextRequest) (stream.TextSource, error)
}

// BackendFactory 按服务商配置创建后端
type BackendFactory func(ctx context.Context, name string, cfg config.TextProviderConfig) (Backend, error)

// Client 文本生成客户端，实现 port.TextGenerator
// 后端按服务商惰性创建并缓存，配置错误在每次调用时返回
type Client struct {
	cfg     config.TextGenerationConfig
	factory BackendFactory

	mu       sync.RWMutex
	backends map[string]Backend
}

var _ port.TextGenerator = (*Client)(nil)

// ClientOption 客户端选项
type ClientOption func(*Client)

// WithBackendFactory 替换后端创建逻辑
func WithBackendFactory(f BackendFactory) ClientOption {
	return func(c *Client) { c.factory = f }
}

// NewClient 创建文本生成客户端
func NewClient(cfg config.TextGenerationConfig, opts ...ClientOption) *Client {
	c := &Client{
		cfg:      cfg,
		factory:  NewBackend,
		backends: make(map[string]Backend),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate 校验当前配置
func (c *Client) Validate() error {
	_, _, err := Resolve(c.cfg)
	return err
}

// ActiveProvider 返回激活的服务商名称与类型
func (c *Client) ActiveProvider() (name, typ string) {
	name, p, err := Resolve(c.cfg)
	if err != nil {
		return c.cfg.ActiveProvider, ""
	}
	return name, p.Type
}

// GenerateText 以激活的服务商流式生成文本
func (c *Client) GenerateText(ctx context.Context, req port.TextRequest) (stream.TextSource, error) {
	name, p, err := Resolve(c.cfg)
	if err != nil {
		logger.Error(ctx, "text provider config invalid", err, "provider", c.cfg.ActiveProvider)
		return nil, err
	}

	b, err := c.backend(ctx, name, p)
	if err != nil {
		return nil, err
	}

	req = applyDefaults(req, p)
	ctx = einoobs.WithWorkflowProvider(ctx, req.Workflow, name)
	logger.Info(ctx, "calling text generation",
		"provider", name,
		"model", req.Model,
		"temperature", *req.Temperature,
		"images", len(req.Images),
	)
	return b.Stream(ctx, req)
}

func (c *Client) backend(ctx context.Context, name string, p config.TextProviderConfig) (Backend, error) {
	c.mu.RLock()
	b, ok := c.backends[name]
	c.mu.RUnlock()
	if ok {
		return b, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok = c.backends[name]; ok {
		return b, nil
	}

	b, err := c.factory(ctx, name, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create text backend %s: %w", name, err)
	}
	c.backends[name] = b
	return b, nil
}

// NewBackend 按服务商类型创建后端
func NewBackend(ctx context.Context, name string, cfg config.TextProviderConfig) (Backend, error) {
	switch cfg.Type {
	case TypeGoogleGemini:
		return newGeminiBackend(ctx, cfg)
	case TypeOpenAI, TypeOpenAICompatible:
		return newOpenAIBackend(ctx, name, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, cfg.Type)
	}
}

func applyDefaults(req port.TextRequest, p config.TextProviderConfig) port.TextRequest {
	if strings.TrimSpace(req.Model) == "" {
		req.Model = p.Model
	}
	if req.Temperature == nil {
		t := float32(p.TemperatureOr(DefaultTemperature))
		req.Temperature = &t
	}
	if req.MaxOutputTokens == nil {
		n := p.MaxOutputTokens
		req.MaxOutputTokens = &n
	}
	return req
}
