package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xhs-content-ai-api/internal/config"
	"xhs-content-ai-api/internal/infrastructure/llm"
	"xhs-content-ai-api/internal/interfaces/http/handler"
)

type readinessBody struct {
	Status string `json:"status"`
	Checks map[string]struct {
		Status   string `json:"status"`
		Error    string `json:"error"`
		Provider string `json:"provider"`
	} `json:"checks"`
}

func healthServer(t *testing.T, h *handler.HealthHandler) string {
	t.Helper()
	srv := newServer(t, func(r *gin.Engine) {
		r.GET("/health", h.Health)
		r.GET("/ready", h.Ready)
		r.GET("/live", h.Live)
	})
	return srv.URL
}

func getReady(t *testing.T, url string) (int, readinessBody) {
	t.Helper()
	resp, err := http.Get(url + "/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body readinessBody
	decodeBody(t, resp, &body)
	return resp.StatusCode, body
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	valid := config.TextGenerationConfig{
		ActiveProvider: "gemini",
		Providers: map[string]config.TextProviderConfig{
			"gemini": {Type: llm.TypeGoogleGemini, APIKey: "key"},
		},
	}

	t.Run("health and live report ok", func(t *testing.T) {
		t.Parallel()

		url := healthServer(t, handler.NewHealthHandler("v0.1.0", nil, nil, nil))

		for _, path := range []string{"/health", "/live"} {
			resp, err := http.Get(url + path)
			require.NoError(t, err)
			var body handler.HealthResponse
			decodeBody(t, resp, &body)
			_ = resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode, path)
			assert.Equal(t, "ok", body.Status, path)
		}
	})

	t.Run("ready with valid text config and optional deps absent", func(t *testing.T) {
		t.Parallel()

		url := healthServer(t, handler.NewHealthHandler("v0.1.0", nil, llm.NewClient(valid), &fakeSearcher{active: "duckduckgo"}))

		status, body := getReady(t, url)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "ok", body.Checks["text_generation"].Status)
		assert.Equal(t, "gemini", body.Checks["text_generation"].Provider)
		assert.Equal(t, "disabled", body.Checks["redis"].Status)
		assert.Equal(t, "duckduckgo", body.Checks["search"].Provider)
	})

	t.Run("not ready when text provider lacks api key", func(t *testing.T) {
		t.Parallel()

		cfg := config.TextGenerationConfig{
			ActiveProvider: "gemini",
			Providers:      map[string]config.TextProviderConfig{"gemini": {Type: llm.TypeGoogleGemini}},
		}
		url := healthServer(t, handler.NewHealthHandler("v0.1.0", nil, llm.NewClient(cfg), &fakeSearcher{}))

		status, body := getReady(t, url)

		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, "not_ready", body.Status)
		assert.Equal(t, "error", body.Checks["text_generation"].Status)
		assert.Contains(t, body.Checks["text_generation"].Error, "gemini")
		assert.Equal(t, "unavailable", body.Checks["search"].Status)
	})
}
