package entity

import "time"

// 搜索查询默认值
const (
	DefaultSearchMaxResults = 5
	DefaultSearchLanguage   = "zh-CN"
	DefaultSearchRegion     = "CN"
	DefaultSafeSearch       = "Moderate"
	DefaultSearchTimeout    = 30 * time.Second
)

// SearchQuery 搜索查询
type SearchQuery struct {
	Query      string        `json:"query"`
	MaxResults int           `json:"max_results"`
	Language   string        `json:"language"`
	Region     string        `json:"region"`
	SafeSearch string        `json:"safe_search"`
	Timeout    time.Duration `json:"timeout"`
}

// SearchQueryOption 查询参数选项
type SearchQueryOption func(*SearchQuery)

// WithMaxResults 设置最大结果数，非正数忽略
func WithMaxResults(n int) SearchQueryOption {
	return func(q *SearchQuery) {
		if n > 0 {
			q.MaxResults = n
		}
	}
}

// WithTimeout 设置超时，非正数忽略
func WithTimeout(d time.Duration) SearchQueryOption {
	return func(q *SearchQuery) {
		if d > 0 {
			q.Timeout = d
		}
	}
}

// WithLocale 设置语言与地区
func WithLocale(language, region string) SearchQueryOption {
	return func(q *SearchQuery) {
		if language != "" {
			q.Language = language
		}
		if region != "" {
			q.Region = region
		}
	}
}

// NewSearchQuery 创建带默认值的查询
func NewSearchQuery(query string, opts ...SearchQueryOption) SearchQuery {
	q := SearchQuery{
		Query:      query,
		MaxResults: DefaultSearchMaxResults,
		Language:   DefaultSearchLanguage,
		Region:     DefaultSearchRegion,
		SafeSearch: DefaultSafeSearch,
		Timeout:    DefaultSearchTimeout,
	}
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// SearchResult 搜索结果
type SearchResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Snippet       string  `json:"snippet"`
	Content       string  `json:"content"`
	Source        string  `json:"source"`
	Score         float64 `json:"score"`
	PublishedDate *string `json:"published_date,omitempty"`
	ThumbnailURL  *string `json:"thumbnail_url,omitempty"`
}

// ResearchItem 进入提示词的参考资料条目
type ResearchItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

// ResearchOutcome 联网搜索的统一结果，失败时 Success 为 false 且 Error 非空
type ResearchOutcome struct {
	Success         bool           `json:"success"`
	HasResearch     bool           `json:"has_research"`
	ResearchContent []ResearchItem `json:"research_content,omitempty"`
	SearchSummary   string         `json:"search_summary,omitempty"`
	Provider        string         `json:"provider,omitempty"`
	Error           string         `json:"error,omitempty"`
}
