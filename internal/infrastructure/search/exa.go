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

const exaURL = "https://api.exa.ai/search"

// Exa 语义搜索，需要 API Key；调用失败时返回空结果
type Exa struct {
	base
	apiKey string
}

type exaRequest struct {
	Query         string      `json:"query"`
	NumResults    int         `json:"numResults"`
	UseAutoprompt bool        `json:"useAutoprompt"`
	Contents      exaContents `json:"contents"`
}

type exaContents struct {
	Text bool `json:"text"`
}

type exaResponse struct {
	Results []struct {
		Title         *string  `json:"title"`
		URL           string   `json:"url"`
		Text          *string  `json:"text"`
		Score         *float64 `json:"score"`
		PublishedDate *string  `json:"publishedDate"`
		Image         *string  `json:"image"`
	} `json:"results"`
}

// NewExa 创建 Exa 服务商，缺少 API Key 时返回配置错误
func NewExa(cfg config.SearchProviderConfig, opts ...Option) (*Exa, error) {
	o := collectOptions(opts)
	if cfg.APIKey == "" {
		return nil, missingKeyError("Exa.ai")
	}
	return &Exa{
		base:   newBase("Exa", cfg, o),
		apiKey: cfg.APIKey,
	}, nil
}

// Search 执行搜索
func (e *Exa) Search(ctx context.Context, q entity.SearchQuery) ([]entity.SearchResult, error) {
	logger.Info(ctx, "exa search", "query", logger.Preview(q.Query, 50))

	ctx, cancel := withQueryTimeout(ctx, q, e.timeout)
	defer cancel()

	payload, err := json.Marshal(exaRequest{
		Query:         q.Query,
		NumResults:    e.limit(q),
		UseAutoprompt: true,
		Contents:      exaContents{Text: true},
	})
	if err != nil {
		logger.Error(ctx, "exa search failed", err)
		return []entity.SearchResult{}, nil
	}

	var resp exaResponse
	err = doJSON(ctx, e.httpClient, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint(exaURL), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", e.apiKey)
		return req, nil
	}, &resp)
	if err != nil {
		logger.Error(ctx, "exa search failed", err, "query", logger.Preview(q.Query, 50))
		return []entity.SearchResult{}, nil
	}

	results := make([]entity.SearchResult, 0, len(resp.Results))
	for _, item := range resp.Results {
		var title, text string
		if item.Title != nil {
			title = *item.Title
		}
		if item.Text != nil {
			text = *item.Text
		}
		score := 1.0
		if item.Score != nil && *item.Score != 0 {
			score = *item.Score
		}
		results = append(results, entity.SearchResult{
			Title:         title,
			URL:           item.URL,
			Snippet:       truncateRunes(text, 500),
			Content:       text,
			Source:        "Exa",
			Score:         score,
			PublishedDate: item.PublishedDate,
			ThumbnailURL:  item.Image,
		})
	}

	logger.Info(ctx, "exa search completed", "results", len(results))
	return results, nil
}
