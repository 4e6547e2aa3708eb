package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"xhs-content-ai-api/internal/domain/entity"
	"xhs-content-ai-api/pkg/logger"
	"xhs-content-ai-api/pkg/metrics"
)

const searchKeyPrefix = "search:"

// SearchCache 搜索结果缓存
// 空结果不写入缓存，避免把服务商的静默失败固化下来
type SearchCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewSearchCache 创建搜索结果缓存
func NewSearchCache(cache *Cache, ttl time.Duration) *SearchCache {
	return &SearchCache{cache: cache, ttl: ttl}
}

// SearchKey 构建缓存键
func SearchKey(provider, query string, maxResults int) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	return fmt.Sprintf("%s%s:%d:%016x", searchKeyPrefix, provider, maxResults, xxhash.Sum64String(normalized))
}

// GetOrLoad 读取缓存，未命中时合并并发请求调用 load
func (s *SearchCache) GetOrLoad(
	ctx context.Context,
	provider, query string,
	maxResults int,
	load func(ctx context.Context) ([]entity.SearchResult, error),
) ([]entity.SearchResult, error) {
	key := SearchKey(provider, query, maxResults)
	ctx, span := cacheTracer.Start(ctx, "cache.SearchGetOrLoad",
		trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var cached []entity.SearchResult
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			metrics.SearchCacheHits.WithLabelValues("hit").Inc()
			return cached, nil
		}
	} else if !IsNil(err) {
		metrics.SearchCacheHits.WithLabelValues("error").Inc()
		logger.Warn(ctx, "search cache read failed", "error", err.Error())
	} else {
		metrics.SearchCacheHits.WithLabelValues("miss").Inc()
	}

	v, err, shared := s.cache.group.Do(key, func() (any, error) {
		results, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if len(results) > 0 && s.ttl > 0 {
			if setErr := s.cache.Set(ctx, key, results, s.ttl); setErr != nil {
				logger.Warn(ctx, "search cache write failed", "error", setErr.Error())
			}
		}
		return results, nil
	})
	span.SetAttributes(attribute.Bool("cache.shared", shared))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return v.([]entity.SearchResult), nil
}

// InvalidateAll 清空全部搜索缓存，切换服务商时调用
func (s *SearchCache) InvalidateAll(ctx context.Context) error {
	return s.cache.InvalidatePattern(ctx, searchKeyPrefix+"*")
}
