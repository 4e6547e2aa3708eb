package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"xhs-content-ai-api/internal/config"
	"xhs-content-ai-api/internal/domain/entity"
	"xhs-content-ai-api/pkg/logger"
)

const (
	duckDuckGoURL       = "https://html.duckduckgo.com/html/"
	duckDuckGoUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Limiter 请求限速
type Limiter interface {
	Wait(ctx context.Context) error
}

// DuckDuckGo 免费网页搜索，无需 API Key
// 任何失败都记录日志并返回空结果，不阻塞生成流程
type DuckDuckGo struct {
	base
	limiter Limiter
}

// NewDuckDuckGo 创建 DuckDuckGo 服务商
func NewDuckDuckGo(cfg config.SearchProviderConfig, opts ...Option) *DuckDuckGo {
	o := collectOptions(opts)
	limiter := o.rateLimiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(time.Second), 1)
	}
	return &DuckDuckGo{
		base:    newBase("DuckDuckGo", cfg, o),
		limiter: limiter,
	}
}

// Search 执行搜索
func (d *DuckDuckGo) Search(ctx context.Context, q entity.SearchQuery) ([]entity.SearchResult, error) {
	logger.Info(ctx, "duckduckgo search", "query", logger.Preview(q.Query, 50))

	results, err := d.search(ctx, q)
	if err != nil {
		logger.Error(ctx, "duckduckgo search failed", err, "query", logger.Preview(q.Query, 50))
		return []entity.SearchResult{}, nil
	}
	if len(results) == 0 {
		logger.Warn(ctx, "duckduckgo returned no results")
	}
	return results, nil
}

func (d *DuckDuckGo) search(ctx context.Context, q entity.SearchQuery) ([]entity.SearchResult, error) {
	ctx, cancel := withQueryTimeout(ctx, q, d.timeout)
	defer cancel()

	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("q", q.Query)
	form.Set("kl", d.param("kl", regionToKL(q.Region)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint(duckDuckGoURL)+"?"+form.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", duckDuckGoUserAgent)
	req.Header.Set("Accept-Language", q.Language)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	limit := d.limit(q)

	results := make([]entity.SearchResult, 0, limit)
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		target := unwrapRedirect(href)
		if target == "" {
			return true
		}
		results = append(results, entity.SearchResult{
			Title:   strings.TrimSpace(link.Text()),
			URL:     target,
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
			Source:  WebsiteName(target),
			Score:   1.0,
		})
		return len(results) < limit
	})

	return results, nil
}

// unwrapRedirect 还原 DuckDuckGo 跳转链接中的真实地址
func unwrapRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" {
		return ""
	}
	return u.String()
}

func regionToKL(region string) string {
	switch strings.ToUpper(region) {
	case "", "CN":
		return "cn-zh"
	case "US":
		return "us-en"
	case "JP":
		return "jp-jp"
	case "TW":
		return "tw-tzh"
	case "HK":
		return "hk-tzh"
	default:
		return "wt-wt"
	}
}
