// Package research 负责联网搜索编排：选择激活的服务商、执行查询并整理参考资料
package research

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"xhs-content-ai-api/internal/config"
	"xhs-content-ai-api/internal/domain/entity"
	"xhs-content-ai-api/internal/infrastructure/search"
	"xhs-content-ai-api/pkg/logger"
	"xhs-content-ai-api/pkg/metrics"
)

// ErrUnavailableMessage 没有可用服务商时返回的错误信息
const ErrUnavailableMessage = "搜索引擎不可用，请检查配置"

const (
	defaultContentMaxChars = 2000
	summaryTitleCount      = 3
)

var tracer = otel.Tracer("research")

// ResultCache 搜索结果缓存
type ResultCache interface {
	GetOrLoad(
		ctx context.Context,
		provider, query string,
		maxResults int,
		load func(ctx context.Context) ([]entity.SearchResult, error),
	) ([]entity.SearchResult, error)
}

// ProviderBuilder 由配置构造服务商
type ProviderBuilder func(cfg config.SearchProviderConfig) (search.Provider, error)

// ProviderInfo 已配置服务商的概要
type ProviderInfo struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
	Active  bool   `json:"active"`
}

type activeProvider struct {
	name     string
	provider search.Provider
	timeout  time.Duration
}

// Orchestrator 搜索编排器
// 激活的服务商通过原子指针切换，Reload 之间互斥
type Orchestrator struct {
	mu     sync.Mutex
	active atomic.Pointer[activeProvider]
	cfg    atomic.Pointer[config.SearchConfig]

	build ProviderBuilder
	cache ResultCache
}

// Option 编排器选项
type Option func(*Orchestrator)

// WithCache 启用搜索结果缓存
func WithCache(c ResultCache) Option {
	return func(o *Orchestrator) { o.cache = c }
}

// WithProviderBuilder 替换服务商构造函数
func WithProviderBuilder(b ProviderBuilder) Option {
	return func(o *Orchestrator) { o.build = b }
}

// WithProviderOptions 构造服务商时附加的选项
func WithProviderOptions(opts ...search.Option) Option {
	return func(o *Orchestrator) {
		o.build = func(cfg config.SearchProviderConfig) (search.Provider, error) {
			return search.New(cfg, opts...)
		}
	}
}

// NewOrchestrator 创建编排器并加载激活的服务商
func NewOrchestrator(ctx context.Context, cfg config.SearchConfig, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		build: func(c config.SearchProviderConfig) (search.Provider, error) {
			return search.New(c)
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	o.Reload(ctx, cfg)
	return o
}

// Reload 按新配置重建激活的服务商
// 构造失败或服务商不可用时，激活服务商置空
func (o *Orchestrator) Reload(ctx context.Context, cfg config.SearchConfig) {
	o.mu.Lock()
	defer o.mu.Unlock()

	snapshot := cfg
	o.cfg.Store(&snapshot)
	o.active.Store(o.resolve(ctx, cfg))

	logger.Info(ctx, "search config reloaded", "active", cfg.ActiveProvider, "available", o.active.Load() != nil)
}

func (o *Orchestrator) resolve(ctx context.Context, cfg config.SearchConfig) *activeProvider {
	pcfg, ok := cfg.Active()
	if !ok {
		logger.Warn(ctx, "active search provider not configured", "provider", cfg.ActiveProvider)
		return nil
	}

	p, err := o.build(pcfg)
	if err != nil {
		logger.Error(ctx, "failed to init search provider", err, "provider", cfg.ActiveProvider)
		return nil
	}
	if !p.Available() {
		logger.Warn(ctx, "search provider unavailable", "provider", cfg.ActiveProvider)
		return nil
	}

	timeout := pcfg.Timeout
	if timeout <= 0 {
		timeout = entity.DefaultSearchTimeout
	}
	return &activeProvider{name: cfg.ActiveProvider, provider: p, timeout: timeout}
}

// ActiveProvider 当前激活的服务商名称，不可用时为空
func (o *Orchestrator) ActiveProvider() string {
	if a := o.active.Load(); a != nil {
		return a.name
	}
	return ""
}

// Providers 列出已配置的服务商
func (o *Orchestrator) Providers() []ProviderInfo {
	cfg := o.cfg.Load()
	if cfg == nil {
		return nil
	}
	active := o.ActiveProvider()

	infos := make([]ProviderInfo, 0, len(cfg.Providers))
	for name, p := range cfg.Providers {
		typ := p.Type
		if typ == "" {
			typ = name
		}
		infos = append(infos, ProviderInfo{
			Name:    name,
			Type:    typ,
			Enabled: p.IsEnabled(),
			Active:  name == active,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Search 执行搜索并整理为参考资料，任何失败都体现在返回值中
func (o *Orchestrator) Search(ctx context.Context, query string, maxResults int) (outcome entity.ResearchOutcome) {
	a := o.active.Load()
	if a == nil {
		return entity.ResearchOutcome{Success: false, Error: ErrUnavailableMessage}
	}

	ctx, span := tracer.Start(ctx, "research.Search")
	span.SetAttributes(
		attribute.String("search.provider", a.name),
		attribute.Int("search.max_results", maxResults),
	)
	defer span.End()

	start := time.Now()
	status := "success"
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("search panic: %v", r)
			logger.Error(ctx, "search failed", err, "provider", a.name)
			outcome = entity.ResearchOutcome{Success: false, Error: err.Error(), Provider: a.name}
			status = "error"
		}
		if status == "error" {
			span.SetStatus(codes.Error, outcome.Error)
		}
		metrics.SearchTotal.WithLabelValues(a.name, status).Inc()
		metrics.SearchDuration.WithLabelValues(a.name).Observe(time.Since(start).Seconds())
	}()

	logger.Info(ctx, "search started", "provider", a.name, "query", logger.Preview(query, 50))

	q := entity.NewSearchQuery(query,
		entity.WithMaxResults(maxResults),
		entity.WithTimeout(a.timeout),
	)

	results, err := o.fetch(ctx, a, q)
	if err != nil {
		status = "error"
		logger.Error(ctx, "search failed", err, "provider", a.name)
		return entity.ResearchOutcome{Success: false, Error: err.Error(), Provider: a.name}
	}

	items := o.collect(results)
	if len(items) == 0 {
		status = "empty"
	}
	logger.Info(ctx, "search completed", "provider", a.name, "results", len(results), "items", len(items))

	return entity.ResearchOutcome{
		Success:         true,
		HasResearch:     len(items) > 0,
		ResearchContent: items,
		SearchSummary:   Summarize(items),
		Provider:        a.name,
	}
}

func (o *Orchestrator) fetch(ctx context.Context, a *activeProvider, q entity.SearchQuery) ([]entity.SearchResult, error) {
	load := func(ctx context.Context) ([]entity.SearchResult, error) {
		return a.provider.Search(ctx, q)
	}
	if o.cache == nil {
		return load(ctx)
	}
	return o.cache.GetOrLoad(ctx, a.name, q.Query, q.MaxResults, load)
}

// collect 以摘要补齐正文，丢弃无正文的结果并截断正文
func (o *Orchestrator) collect(results []entity.SearchResult) []entity.ResearchItem {
	limit := defaultContentMaxChars
	if cfg := o.cfg.Load(); cfg != nil && cfg.ContentMaxChars > 0 {
		limit = cfg.ContentMaxChars
	}

	items := make([]entity.ResearchItem, 0, len(results))
	for _, r := range results {
		content := r.Content
		if content == "" {
			content = r.Snippet
		}
		if content == "" {
			continue
		}
		items = append(items, entity.ResearchItem{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Snippet,
			Content: truncateRunes(content, limit),
			Source:  r.Source,
		})
	}
	return items
}

// Summarize 生成一行搜索摘要，列出前三个标题
func Summarize(items []entity.ResearchItem) string {
	if len(items) == 0 {
		return ""
	}
	titles := make([]string, 0, summaryTitleCount)
	for i, it := range items {
		if i == summaryTitleCount {
			break
		}
		titles = append(titles, it.Title)
	}
	return fmt.Sprintf("找到 %d 条相关内容：", len(items)) + strings.Join(titles, "、")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
