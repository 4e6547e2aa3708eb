package outline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xhs-content-ai-api/internal/application/outline"
	"xhs-content-ai-api/internal/domain/entity"
)

func TestParsePages(t *testing.T) {
	t.Parallel()

	t.Run("splits on page tags and keeps markers", func(t *testing.T) {
		t.Parallel()

		pages := outline.ParsePages("[封面]\n标题页\n\n<page>\n\n内容页正文")

		assert.Equal(t, []entity.Page{
			{Index: 0, Type: entity.PageTypeCover, Content: "[封面]\n标题页"},
			{Index: 1, Type: entity.PageTypeContent, Content: "内容页正文"},
		}, pages)
	})

	t.Run("page tag is case insensitive", func(t *testing.T) {
		t.Parallel()

		pages := outline.ParsePages("[封面]\nA<PAGE>[内容]\nB<Page>[总结]\nC")

		require.Len(t, pages, 3)
		assert.Equal(t, entity.PageTypeCover, pages[0].Type)
		assert.Equal(t, entity.PageTypeContent, pages[1].Type)
		assert.Equal(t, entity.PageTypeSummary, pages[2].Type)
	})

	t.Run("falls back to dashes without page tags", func(t *testing.T) {
		t.Parallel()

		pages := outline.ParsePages("[封面]\nA\n---\n[总结]\nB")

		require.Len(t, pages, 2)
		assert.Equal(t, "[封面]\nA", pages[0].Content)
		assert.Equal(t, entity.PageTypeSummary, pages[1].Type)
	})

	t.Run("page tags take precedence over dashes", func(t *testing.T) {
		t.Parallel()

		pages := outline.ParsePages("[封面]\nA --- B\n<page>\n[内容]\nC")

		require.Len(t, pages, 2)
		assert.Equal(t, "[封面]\nA --- B", pages[0].Content)
	})

	t.Run("empty segments do not consume indices", func(t *testing.T) {
		t.Parallel()

		pages := outline.ParsePages("<page>\n\n<page>[封面]\nA<page>   <page>[内容]\nB<page>")

		require.Len(t, pages, 2)
		assert.Equal(t, 0, pages[0].Index)
		assert.Equal(t, 1, pages[1].Index)
	})

	t.Run("whitespace around tags does not change the split", func(t *testing.T) {
		t.Parallel()

		tight := outline.ParsePages("[封面]\nA<page>[内容]\nB<page>[总结]\nC")
		loose := outline.ParsePages("\n\n  [封面]\nA  \n\n\n<page>\t\n [内容]\nB\n<page>\n\n[总结]\nC\n\n")

		assert.Equal(t, tight, loose)
	})

	t.Run("unknown and missing markers are content pages", func(t *testing.T) {
		t.Parallel()

		pages := outline.ParsePages("[彩蛋]\nA<page>没有标记<page> [封面] 前面有空格")

		require.Len(t, pages, 3)
		assert.Equal(t, entity.PageTypeContent, pages[0].Type)
		assert.Equal(t, entity.PageTypeContent, pages[1].Type)
		assert.Equal(t, entity.PageTypeCover, pages[2].Type)
	})

	t.Run("no pages from blank text", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, outline.ParsePages(""))
		assert.Empty(t, outline.ParsePages("  \n <page> \n "))
	})
}

func TestParseOutline(t *testing.T) {
	t.Parallel()

	raw := "[封面]\nA\n<page>\n[总结]\nB"
	o := outline.ParseOutline(raw)

	assert.Equal(t, raw, o.Raw)
	assert.Len(t, o.Pages, 2)
	assert.False(t, o.IsEmpty())
}

func TestStripPageMarker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "cover", in: "[封面]\n标题页", want: "标题页"},
		{name: "leading whitespace", in: "  [总结] 收尾", want: "收尾"},
		{name: "no marker", in: "正文", want: "正文"},
		{name: "only first marker", in: "[内容]\n[内容]x", want: "[内容]x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, outline.StripPageMarker(tt.in))
		})
	}
}
