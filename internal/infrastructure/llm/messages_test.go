package llm_test

import (
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xhs-content-ai-api/internal/infrastructure/llm"
	"xhs-content-ai-api/internal/workflow/port"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestImageMIME(t *testing.T) {
	t.Parallel()

	mime, err := llm.ImageMIME(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	_, err = llm.ImageMIME([]byte("plain text, not an image"))
	require.Error(t, err)

	_, err = llm.ImageMIME(nil)
	require.Error(t, err)
}

func TestImageDataURL(t *testing.T) {
	t.Parallel()

	url, err := llm.ImageDataURL(pngHeader)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,iVBORw0KGgo"))
}

func TestBuildMessages(t *testing.T) {
	t.Parallel()

	t.Run("text only", func(t *testing.T) {
		t.Parallel()

		msgs, err := llm.BuildMessages(port.TextRequest{System: "sys", Prompt: "hi"})

		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, schema.System, msgs[0].Role)
		assert.Equal(t, "sys", msgs[0].Content)
		assert.Equal(t, "hi", msgs[1].Content)
	})

	t.Run("images become multi content parts", func(t *testing.T) {
		t.Parallel()

		msgs, err := llm.BuildMessages(port.TextRequest{Prompt: "hi", Images: [][]byte{pngHeader}})

		require.NoError(t, err)
		require.Len(t, msgs, 1)
		parts := msgs[0].MultiContent
		require.Len(t, parts, 2)
		assert.Equal(t, schema.ChatMessagePartTypeText, parts[0].Type)
		assert.Equal(t, "hi", parts[0].Text)
		assert.Equal(t, schema.ChatMessagePartTypeImageURL, parts[1].Type)
		assert.True(t, strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,"))
	})

	t.Run("rejects non-image uploads", func(t *testing.T) {
		t.Parallel()

		_, err := llm.BuildMessages(port.TextRequest{Prompt: "hi", Images: [][]byte{[]byte("%PDF-1.4")}})

		require.Error(t, err)
	})
}

func TestBuildContents(t *testing.T) {
	t.Parallel()

	contents, err := llm.BuildContents(port.TextRequest{Prompt: "hi", Images: [][]byte{pngHeader}})

	require.NoError(t, err)
	require.Len(t, contents, 1)
	parts := contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "image/png", parts[0].InlineData.MIMEType)
	assert.Equal(t, "hi", parts[1].Text)
}

func TestBuildGenerateConfig(t *testing.T) {
	t.Parallel()

	temp := float32(0.5)
	tokens := 1024
	cfg := llm.BuildGenerateConfig(port.TextRequest{System: "sys", Temperature: &temp, MaxOutputTokens: &tokens})

	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "sys", cfg.SystemInstruction.Parts[0].Text)
	assert.InDelta(t, 0.5, *cfg.Temperature, 1e-6)
	assert.Equal(t, int32(1024), cfg.MaxOutputTokens)
}
