package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"xhs-content-ai-api/internal/config"
	"xhs-content-ai-api/internal/domain/entity"
	"xhs-content-ai-api/pkg/logger"
)

const googleCustomURL = "https://www.googleapis.com/customsearch/v1"

// Google 单次请求最多返回 10 条
const googleMaxNum = 10

// GoogleCustom Google Programmable Search
// 缺少 api_key 或 search_engine_id 时以禁用状态创建；调用失败时返回错误
type GoogleCustom struct {
	base
	apiKey         string
	searchEngineID string
}

type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

type googleErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewGoogleCustom 创建 Google 服务商
func NewGoogleCustom(cfg config.SearchProviderConfig, opts ...Option) *GoogleCustom {
	o := collectOptions(opts)
	g := &GoogleCustom{
		base:           newBase("GoogleCustomSearch", cfg, o),
		apiKey:         cfg.APIKey,
		searchEngineID: cfg.SearchEngineID,
	}
	if g.apiKey == "" || g.searchEngineID == "" {
		logger.Warn(context.Background(), "google custom search config incomplete, provider disabled")
		g.enabled = false
	}
	return g
}

// Search 执行搜索
func (g *GoogleCustom) Search(ctx context.Context, q entity.SearchQuery) ([]entity.SearchResult, error) {
	if !g.Available() {
		return nil, fmt.Errorf("%w: Google Custom Search 未配置或已禁用", ErrProviderDisabled)
	}

	logger.Info(ctx, "google custom search", "query", logger.Preview(q.Query, 50))

	ctx, cancel := withQueryTimeout(ctx, q, g.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.searchEngineID)
	params.Set("q", q.Query)
	params.Set("num", strconv.Itoa(min(g.limit(q), googleMaxNum)))
	params.Set("safe", g.param("safe", "active"))
	params.Set("gl", g.param("gl", q.Region))
	params.Set("hl", g.param("hl", q.Language))
	for k, v := range g.params {
		if params.Get(k) == "" {
			params.Set(k, v)
		}
	}

	var resp googleResponse
	err := doJSON(ctx, g.httpClient, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint(googleCustomURL)+"?"+params.Encode(), nil)
	}, &resp)
	if err != nil {
		err = googleError(err)
		logger.Error(ctx, "google custom search failed", err, "query", logger.Preview(q.Query, 50))
		return nil, err
	}

	results := make([]entity.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, entity.SearchResult{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
			Source:  "Google",
			Score:   1.0,
		})
	}

	logger.Info(ctx, "google custom search completed", "results", len(results))
	return results, nil
}

// googleError 提取响应体中的 error.message
func googleError(err error) error {
	var se *statusError
	if !errors.As(err, &se) {
		return fmt.Errorf("Google API 请求失败: %w", err)
	}
	msg := "未知错误"
	var body googleErrorBody
	if json.Unmarshal(se.Body, &body) == nil && body.Error.Message != "" {
		msg = body.Error.Message
	}
	return fmt.Errorf("Google API 错误: %s", msg)
}
