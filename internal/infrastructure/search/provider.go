// Package search 提供联网搜索服务商抽象、工厂与各服务商实现
package search

import (
	"context"
	"errors"
	"net/http"
	"time"

	"xhs-content-ai-api/internal/config"
	"xhs-content-ai-api/internal/domain/entity"
)

// 服务商类型
const (
	TypeDuckDuckGo   = "duckduckgo"
	TypeTavily       = "tavily"
	TypeExa          = "exa"
	TypeGoogleCustom = "google_custom"
)

const (
	defaultMaxResults = 5
	defaultTimeout    = 30 * time.Second
)

var (
	// ErrUnknownProvider 不支持的服务商类型
	ErrUnknownProvider = errors.New("search: unknown provider type")
	// ErrMissingAPIKey 缺少 API Key
	ErrMissingAPIKey = errors.New("search: missing api key")
	// ErrProviderDisabled 服务商未启用
	ErrProviderDisabled = errors.New("search: provider disabled")
)

// Provider 搜索服务商
//
// 各实现的失败策略不同：duckduckgo/tavily/exa 出错时记录日志并返回空结果，
// google_custom 返回错误。调用方需同时处理两种情况。
type Provider interface {
	Search(ctx context.Context, q entity.SearchQuery) ([]entity.SearchResult, error)
	Available() bool
	Name() string
}

// base 服务商公共字段
type base struct {
	name       string
	enabled    bool
	maxResults int
	timeout    time.Duration
	params     map[string]string
	httpClient *http.Client
	baseURL    string
}

func newBase(name string, cfg config.SearchProviderConfig, o options) base {
	b := base{
		name:       name,
		enabled:    cfg.IsEnabled(),
		maxResults: cfg.MaxResults,
		timeout:    cfg.Timeout,
		params:     cfg.Params,
		httpClient: o.httpClient,
		baseURL:    o.baseURL,
	}
	if b.maxResults <= 0 {
		b.maxResults = defaultMaxResults
	}
	if b.timeout <= 0 {
		b.timeout = defaultTimeout
	}
	if b.params == nil {
		b.params = map[string]string{}
	}
	if b.httpClient == nil {
		b.httpClient = &http.Client{Timeout: b.timeout}
	}
	return b
}

func (b *base) Available() bool { return b.enabled }

func (b *base) Name() string { return b.name }

// Timeout 配置的请求超时
func (b *base) Timeout() time.Duration { return b.timeout }

// MaxResults 配置的最大结果数
func (b *base) MaxResults() int { return b.maxResults }

// limit 单次查询的结果数，取配置与查询中较小的一个
func (b *base) limit(q entity.SearchQuery) int {
	if q.MaxResults > 0 && q.MaxResults < b.maxResults {
		return q.MaxResults
	}
	return b.maxResults
}

func (b *base) param(key, fallback string) string {
	if v, ok := b.params[key]; ok && v != "" {
		return v
	}
	return fallback
}

// endpoint 返回覆盖后的地址或默认地址
func (b *base) endpoint(fallback string) string {
	if b.baseURL != "" {
		return b.baseURL
	}
	return fallback
}

// withQueryTimeout 以查询超时约束单次请求
func withQueryTimeout(ctx context.Context, q entity.SearchQuery, fallback time.Duration) (context.Context, context.CancelFunc) {
	d := q.Timeout
	if d <= 0 {
		d = fallback
	}
	return context.WithTimeout(ctx, d)
}

// Option 服务商构造选项
type Option func(*options)

type options struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter Limiter
}

// WithHTTPClient 指定 HTTP 客户端
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithBaseURL 覆盖服务商接口地址
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithRateLimiter 指定请求限速器（仅 duckduckgo 使用）
func WithRateLimiter(l Limiter) Option {
	return func(o *options) { o.rateLimiter = l }
}

func collectOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
