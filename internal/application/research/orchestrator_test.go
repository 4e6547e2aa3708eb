package research_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xhs-content-ai-api/internal/application/research"
	"xhs-content-ai-api/internal/config"
	"xhs-content-ai-api/internal/domain/entity"
	"xhs-content-ai-api/internal/infrastructure/search"
)

type fakeProvider struct {
	name      string
	available bool
	SearchFn  func(ctx context.Context, q entity.SearchQuery) ([]entity.SearchResult, error)
}

func (f *fakeProvider) Search(ctx context.Context, q entity.SearchQuery) ([]entity.SearchResult, error) {
	return f.SearchFn(ctx, q)
}

func (f *fakeProvider) Available() bool { return f.available }

func (f *fakeProvider) Name() string { return f.name }

type fakeCache struct {
	mu    sync.Mutex
	calls []string
}

func (c *fakeCache) GetOrLoad(
	ctx context.Context,
	provider, query string,
	maxResults int,
	load func(ctx context.Context) ([]entity.SearchResult, error),
) ([]entity.SearchResult, error) {
	c.mu.Lock()
	c.calls = append(c.calls, provider+"|"+query)
	c.mu.Unlock()
	return load(ctx)
}

func searchConfig(active string, timeout time.Duration) config.SearchConfig {
	return config.SearchConfig{
		ActiveProvider: active,
		Providers: map[string]config.SearchProviderConfig{
			"fake":   {Type: "fake", Timeout: timeout},
			"backup": {Type: "backup"},
		},
		ContentMaxChars: 2000,
	}
}

func builderFor(providers map[string]search.Provider) research.ProviderBuilder {
	return func(cfg config.SearchProviderConfig) (search.Provider, error) {
		p, ok := providers[cfg.Type]
		if !ok {
			return nil, search.ErrUnknownProvider
		}
		return p, nil
	}
}

func newOrchestrator(t *testing.T, p search.Provider, opts ...research.Option) *research.Orchestrator {
	t.Helper()
	opts = append([]research.Option{
		research.WithProviderBuilder(builderFor(map[string]search.Provider{"fake": p})),
	}, opts...)
	return research.NewOrchestrator(context.Background(), searchConfig("fake", 7*time.Second), opts...)
}

func staticResults(results ...entity.SearchResult) func(context.Context, entity.SearchQuery) ([]entity.SearchResult, error) {
	return func(context.Context, entity.SearchQuery) ([]entity.SearchResult, error) {
		return results, nil
	}
}

func TestOrchestrator_NoActiveProvider(t *testing.T) {
	t.Parallel()

	t.Run("construction failure", func(t *testing.T) {
		t.Parallel()

		o := research.NewOrchestrator(context.Background(), searchConfig("missing", 0),
			research.WithProviderBuilder(builderFor(nil)))

		out := o.Search(context.Background(), "露营", 5)

		assert.False(t, out.Success)
		assert.False(t, out.HasResearch)
		assert.Equal(t, research.ErrUnavailableMessage, out.Error)
		assert.Empty(t, o.ActiveProvider())
	})

	t.Run("unavailable provider", func(t *testing.T) {
		t.Parallel()

		o := newOrchestrator(t, &fakeProvider{name: "fake", available: false})

		out := o.Search(context.Background(), "露营", 5)

		assert.False(t, out.Success)
		assert.Equal(t, "搜索引擎不可用，请检查配置", out.Error)
	})
}

func TestOrchestrator_Search(t *testing.T) {
	t.Parallel()

	t.Run("backfills, filters and truncates content", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("长", 2500)
		o := newOrchestrator(t, &fakeProvider{name: "fake", available: true, SearchFn: staticResults(
			entity.SearchResult{Title: "A", URL: "https://a.example", Snippet: "sa", Source: "甲"},
			entity.SearchResult{Title: "B", URL: "https://b.example"},
			entity.SearchResult{Title: "C", Content: long, Snippet: "sc"},
		)})

		out := o.Search(context.Background(), "露营装备", 5)

		require.True(t, out.Success)
		assert.True(t, out.HasResearch)
		assert.Equal(t, "fake", out.Provider)
		require.Len(t, out.ResearchContent, 2)
		assert.Equal(t, "sa", out.ResearchContent[0].Content)
		assert.Equal(t, "甲", out.ResearchContent[0].Source)
		assert.Equal(t, 2000, len([]rune(out.ResearchContent[1].Content)))
		assert.Equal(t, "找到 2 条相关内容：A、C", out.SearchSummary)
	})

	t.Run("summary lists first three titles", func(t *testing.T) {
		t.Parallel()

		o := newOrchestrator(t, &fakeProvider{name: "fake", available: true, SearchFn: staticResults(
			entity.SearchResult{Title: "一", Content: "x"},
			entity.SearchResult{Title: "二", Content: "x"},
			entity.SearchResult{Title: "三", Content: "x"},
			entity.SearchResult{Title: "四", Content: "x"},
		)})

		out := o.Search(context.Background(), "q", 5)

		assert.Equal(t, "找到 4 条相关内容：一、二、三", out.SearchSummary)
	})

	t.Run("no usable results", func(t *testing.T) {
		t.Parallel()

		o := newOrchestrator(t, &fakeProvider{name: "fake", available: true, SearchFn: staticResults(
			entity.SearchResult{Title: "空"},
		)})

		out := o.Search(context.Background(), "q", 5)

		assert.True(t, out.Success)
		assert.False(t, out.HasResearch)
		assert.Empty(t, out.ResearchContent)
		assert.Empty(t, out.SearchSummary)
	})

	t.Run("passes provider timeout and max results", func(t *testing.T) {
		t.Parallel()

		var got entity.SearchQuery
		o := newOrchestrator(t, &fakeProvider{name: "fake", available: true,
			SearchFn: func(_ context.Context, q entity.SearchQuery) ([]entity.SearchResult, error) {
				got = q
				return nil, nil
			}})

		o.Search(context.Background(), "咖啡", 3)

		assert.Equal(t, "咖啡", got.Query)
		assert.Equal(t, 3, got.MaxResults)
		assert.Equal(t, 7*time.Second, got.Timeout)
		assert.Equal(t, entity.DefaultSearchLanguage, got.Language)
	})

	t.Run("backend error becomes failure outcome", func(t *testing.T) {
		t.Parallel()

		o := newOrchestrator(t, &fakeProvider{name: "fake", available: true,
			SearchFn: func(context.Context, entity.SearchQuery) ([]entity.SearchResult, error) {
				return nil, errors.New("Google API 错误: quota exceeded")
			}})

		out := o.Search(context.Background(), "q", 5)

		assert.False(t, out.Success)
		assert.False(t, out.HasResearch)
		assert.Equal(t, "Google API 错误: quota exceeded", out.Error)
	})

	t.Run("backend panic becomes failure outcome", func(t *testing.T) {
		t.Parallel()

		o := newOrchestrator(t, &fakeProvider{name: "fake", available: true,
			SearchFn: func(context.Context, entity.SearchQuery) ([]entity.SearchResult, error) {
				panic("boom")
			}})

		out := o.Search(context.Background(), "q", 5)

		assert.False(t, out.Success)
		assert.Contains(t, out.Error, "boom")
	})

	t.Run("goes through cache when configured", func(t *testing.T) {
		t.Parallel()

		cache := &fakeCache{}
		o := newOrchestrator(t, &fakeProvider{name: "fake", available: true, SearchFn: staticResults(
			entity.SearchResult{Title: "A", Content: "x"},
		)}, research.WithCache(cache))

		out := o.Search(context.Background(), "q", 5)

		assert.True(t, out.HasResearch)
		assert.Equal(t, []string{"fake|q"}, cache.calls)
	})
}

func TestOrchestrator_Reload(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "fake", available: true, SearchFn: staticResults(
		entity.SearchResult{Title: "primary", Content: "x"},
	)}
	backup := &fakeProvider{name: "backup", available: true, SearchFn: staticResults(
		entity.SearchResult{Title: "backup", Content: "x"},
	)}
	o := research.NewOrchestrator(context.Background(), searchConfig("fake", 0),
		research.WithProviderBuilder(builderFor(map[string]search.Provider{"fake": primary, "backup": backup})))

	require.Equal(t, "fake", o.ActiveProvider())

	o.Reload(context.Background(), searchConfig("backup", 0))

	assert.Equal(t, "backup", o.ActiveProvider())
	out := o.Search(context.Background(), "q", 5)
	require.Len(t, out.ResearchContent, 1)
	assert.Equal(t, "backup", out.ResearchContent[0].Title)

	infos := o.Providers()
	require.Len(t, infos, 2)
	assert.Equal(t, research.ProviderInfo{Name: "backup", Type: "backup", Enabled: true, Active: true}, infos[0])
	assert.Equal(t, research.ProviderInfo{Name: "fake", Type: "fake", Enabled: true, Active: false}, infos[1])
}

func TestOrchestrator_ConcurrentSearchAndReload(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{name: "fake", available: true, SearchFn: staticResults(
		entity.SearchResult{Title: "A", Content: "x"},
	)}
	builder := research.WithProviderBuilder(builderFor(map[string]search.Provider{"fake": p, "backup": p}))
	o := research.NewOrchestrator(context.Background(), searchConfig("fake", 0), builder)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			out := o.Search(context.Background(), "q", 5)
			assert.True(t, out.Success)
		}()
		go func(i int) {
			defer wg.Done()
			active := "fake"
			if i%2 == 0 {
				active = "backup"
			}
			o.Reload(context.Background(), searchConfig(active, 0))
		}(i)
	}
	wg.Wait()
}

func TestBuildResearchBlock(t *testing.T) {
	t.Parallel()

	t.Run("empty without research", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, research.BuildResearchBlock(entity.ResearchOutcome{Success: true}))
	})

	t.Run("numbers items with sources", func(t *testing.T) {
		t.Parallel()

		block := research.BuildResearchBlock(entity.ResearchOutcome{
			Success:     true,
			HasResearch: true,
			ResearchContent: []entity.ResearchItem{
				{Title: "露营清单", Content: "帐篷、睡袋", Source: "知乎"},
				{Title: "新手攻略", Content: " 选营地 "},
			},
		})

		assert.True(t, strings.HasPrefix(block, "【参考资料】"))
		assert.Contains(t, block, "1. 露营清单（知乎）\n帐篷、睡袋")
		assert.Contains(t, block, "2. 新手攻略\n选营地")
		assert.False(t, strings.HasSuffix(block, "\n"))
	})
}
