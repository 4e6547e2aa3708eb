package copywriting_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"xhs-content-ai-api/internal/application/copywriting"
	"xhs-content-ai-api/internal/domain/entity"
)

func TestOutlineDigest(t *testing.T) {
	t.Parallel()

	t.Run("first three pages with prefixes", func(t *testing.T) {
		t.Parallel()

		got := copywriting.OutlineDigest(entity.Outline{Pages: []entity.Page{
			{Type: entity.PageTypeCover, Content: "封面标题"},
			{Type: entity.PageTypeContent, Content: "要点一"},
			{Type: entity.PageTypeSummary, Content: "总结"},
			{Type: entity.PageTypeContent, Content: "第四页"},
		}})

		assert.Equal(t, "封面：封面标题...\n内容页：要点一...\n内容页：总结...", got)
	})

	t.Run("truncates long pages by runes", func(t *testing.T) {
		t.Parallel()

		got := copywriting.OutlineDigest(entity.Outline{Pages: []entity.Page{
			{Type: entity.PageTypeContent, Content: strings.Repeat("字", 200)},
		}})

		assert.Equal(t, "内容页："+strings.Repeat("字", 150)+"...", got)
	})

	t.Run("parses raw when pages are missing", func(t *testing.T) {
		t.Parallel()

		got := copywriting.OutlineDigest(entity.Outline{Raw: "[封面]\nA\n<page>\n[内容]\nB"})

		assert.Equal(t, "封面：[封面]\nA...\n内容页：[内容]\nB...", got)
	})

	t.Run("empty outline", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "（无大纲内容）", copywriting.OutlineDigest(entity.Outline{}))
	})
}
