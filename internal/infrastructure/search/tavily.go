package search

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"xhs-content-ai-api/internal/config"
	"xhs-content-ai-api/internal/domain/entity"
	"xhs-content-ai-api/pkg/logger"
)

const tavilyURL = "https://api.tavily.com/search"

// Tavily AI 搜索，需要 API Key；调用失败时返回空结果
type Tavily struct {
	base
	apiKey string
}

type tavilyRequest struct {
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilyResponse struct {
	Results []struct {
		Title         string   `json:"title"`
		URL           string   `json:"url"`
		Content       string   `json:"content"`
		Score         *float64 `json:"score"`
		PublishedDate *string  `json:"published_date"`
	} `json:"results"`
}

// NewTavily 创建 Tavily 服务商，缺少 API Key 时返回配置错误
func NewTavily(cfg config.SearchProviderConfig, opts ...Option) (*Tavily, error) {
	o := collectOptions(opts)
	if cfg.APIKey == "" {
		return nil, missingKeyError("Tavily")
	}
	return &Tavily{
		base:   newBase("Tavily", cfg, o),
		apiKey: cfg.APIKey,
	}, nil
}

// Search 执行搜索
func (t *Tavily) Search(ctx context.Context, q entity.SearchQuery) ([]entity.SearchResult, error) {
	logger.Info(ctx, "tavily search", "query", logger.Preview(q.Query, 50))

	ctx, cancel := withQueryTimeout(ctx, q, t.timeout)
	defer cancel()

	payload, err := json.Marshal(tavilyRequest{
		Query:       q.Query,
		MaxResults:  t.limit(q),
		SearchDepth: t.param("search_depth", "basic"),
	})
	if err != nil {
		logger.Error(ctx, "tavily search failed", err)
		return []entity.SearchResult{}, nil
	}

	var resp tavilyResponse
	err = doJSON(ctx, t.httpClient, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint(tavilyURL), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
		return req, nil
	}, &resp)
	if err != nil {
		logger.Error(ctx, "tavily search failed", err, "query", logger.Preview(q.Query, 50))
		return []entity.SearchResult{}, nil
	}

	results := make([]entity.SearchResult, 0, len(resp.Results))
	for _, item := range resp.Results {
		score := 1.0
		if item.Score != nil {
			score = *item.Score
		}
		results = append(results, entity.SearchResult{
			Title:         item.Title,
			URL:           item.URL,
			Snippet:       truncateRunes(item.Content, 500),
			Content:       item.Content,
			Source:        "Tavily",
			Score:         score,
			PublishedDate: item.PublishedDate,
		})
	}

	logger.Info(ctx, "tavily search completed", "results", len(results))
	return results, nil
}
