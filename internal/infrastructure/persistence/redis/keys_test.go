package redis_test

import (
	"errors"
	"strings"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"xhs-content-ai-api/internal/infrastructure/persistence/redis"
)

func TestSearchKey(t *testing.T) {
	t.Parallel()

	t.Run("normalizes query case and whitespace", func(t *testing.T) {
		t.Parallel()

		a := redis.SearchKey("tavily", "  露营 Guide ", 5)
		b := redis.SearchKey("tavily", "露营 guide", 5)

		assert.Equal(t, a, b)
		assert.True(t, strings.HasPrefix(a, "search:tavily:5:"))
	})

	t.Run("separates providers and limits", func(t *testing.T) {
		t.Parallel()

		base := redis.SearchKey("tavily", "露营", 5)
		assert.NotEqual(t, base, redis.SearchKey("exa", "露营", 5))
		assert.NotEqual(t, base, redis.SearchKey("tavily", "露营", 3))
	})
}

func TestBuildRateLimitKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ratelimit:10.0.0.1:/api/outline/stream",
		redis.BuildRateLimitKey("10.0.0.1", "/api/outline/stream"))
}

func TestIsNil(t *testing.T) {
	t.Parallel()

	assert.True(t, redis.IsNil(goredis.Nil))
	assert.False(t, redis.IsNil(errors.New("boom")))
	assert.False(t, redis.IsNil(nil))
}
