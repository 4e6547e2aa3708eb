package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xhs-content-ai-api/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "xhs-content-ai-api", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.Equal(t, "duckduckgo", cfg.Search.ActiveProvider)
	assert.Equal(t, 2000, cfg.Search.ContentMaxChars)
	assert.Equal(t, 10*time.Minute, cfg.Cache.Redis.SearchTTL)
	assert.False(t, cfg.Cache.Redis.Enabled)

	active, ok := cfg.Search.Active()
	require.True(t, ok)
	assert.Equal(t, "duckduckgo", active.Type)
	assert.Equal(t, 5, active.MaxResults)
	assert.True(t, active.IsEnabled())
}

func TestLoadFrom_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("XHS_TEST_TAVILY_KEY", "tvly-123")

	dir := writeConfig(t, `
search:
  active_provider: tavily
  providers:
    tavily:
      type: tavily
      api_key: ${XHS_TEST_TAVILY_KEY}
      timeout: 10s
    google:
      type: google_custom
      api_key: ${XHS_TEST_MISSING_KEY:fallback}
      enabled: false
text_generation:
  active_provider: main
  providers:
    main:
      type: google_gemini
      api_key: abc
`)

	cfg, err := config.LoadFrom(dir)
	require.NoError(t, err)

	tavily, ok := cfg.Search.Active()
	require.True(t, ok)
	assert.Equal(t, "tvly-123", tavily.APIKey)
	assert.Equal(t, 10*time.Second, tavily.Timeout)
	assert.Equal(t, 5, tavily.MaxResults)

	google := cfg.Search.Providers["google"]
	assert.Equal(t, "fallback", google.APIKey)
	assert.False(t, google.IsEnabled())

	main := cfg.TextGeneration.Providers["main"]
	assert.Equal(t, "gemini-2.0-flash-exp", main.Model)
	require.NotNil(t, main.Temperature)
	assert.InDelta(t, 1.0, *main.Temperature, 1e-9)
	assert.Equal(t, 8000, main.MaxOutputTokens)
}

func TestLoadFrom_MissingTypeFallsBackToName(t *testing.T) {
	dir := writeConfig(t, `
search:
  active_provider: exa
  providers:
    exa:
      api_key: k
`)

	cfg, err := config.LoadFrom(dir)
	require.NoError(t, err)

	active, ok := cfg.Search.Active()
	require.True(t, ok)
	assert.Equal(t, "exa", active.Type)
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := writeConfig(t, "search: [unterminated")

	_, err := config.LoadFrom(dir)
	require.Error(t, err)
}

func TestLoadFrom_KeepsExplicitZeroTemperature(t *testing.T) {
	dir := writeConfig(t, `
text_generation:
  active_provider: strict
  providers:
    strict:
      type: openai
      api_key: abc
      temperature: 0
    loose:
      type: openai
      api_key: abc
`)

	cfg, err := config.LoadFrom(dir)
	require.NoError(t, err)

	strict := cfg.TextGeneration.Providers["strict"]
	require.NotNil(t, strict.Temperature)
	assert.Zero(t, *strict.Temperature)
	assert.Zero(t, strict.TemperatureOr(1.0))

	loose := cfg.TextGeneration.Providers["loose"]
	require.NotNil(t, loose.Temperature)
	assert.InDelta(t, 1.0, *loose.Temperature, 1e-9)
}

func TestLoadFrom_BareNumberDurationsAreSeconds(t *testing.T) {
	t.Setenv("SERVER_HTTP_READ_TIMEOUT", "15")

	dir := writeConfig(t, `
server:
  http:
    idle_timeout: 1m
search:
  active_provider: tavily
  providers:
    tavily:
      type: tavily
      api_key: k
      timeout: 30
    exa:
      type: exa
      api_key: k
      timeout: 2.5
text_generation:
  providers:
    main:
      type: openai
      api_key: k
      timeout: 300
`)

	cfg, err := config.LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Search.Providers["tavily"].Timeout)
	assert.Equal(t, 2500*time.Millisecond, cfg.Search.Providers["exa"].Timeout)
	assert.Equal(t, 300*time.Second, cfg.TextGeneration.Providers["main"].Timeout)
	assert.Equal(t, 15*time.Second, cfg.Server.HTTP.ReadTimeout)
	assert.Equal(t, time.Minute, cfg.Server.HTTP.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.Search.Providers["duckduckgo"].Timeout)
}
