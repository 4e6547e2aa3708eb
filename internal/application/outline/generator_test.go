package outline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xhs-content-ai-api/internal/application/outline"
	"xhs-content-ai-api/internal/application/stream"
	"xhs-content-ai-api/internal/application/stream/streamtest"
	"xhs-content-ai-api/internal/domain/entity"
	"xhs-content-ai-api/internal/workflow/port"
	"xhs-content-ai-api/internal/workflow/prompt"
)

type fakeResearcher struct {
	SearchFn func(ctx context.Context, query string, maxResults int) entity.ResearchOutcome
}

func (f *fakeResearcher) Search(ctx context.Context, query string, maxResults int) entity.ResearchOutcome {
	return f.SearchFn(ctx, query, maxResults)
}

const generatedOutline = "[封面]\n露营新手指南\n<page>\n[内容]\n装备清单\n<page>\n[总结]\n出发吧"

func TestGenerator_Stream(t *testing.T) {
	t.Parallel()

	t.Run("emits progress, text and parsed completion", func(t *testing.T) {
		t.Parallel()

		text := streamtest.Replying("[封面]\n露营新手指南\n<page>\n", "[内容]\n装备清单\n<page>\n[总结]\n出发吧")
		g := outline.NewGenerator(text, prompt.NewRegistry())

		events := streamtest.Drain(t, g.Stream(context.Background(), outline.GenerateInput{Topic: "露营"}))

		assert.Equal(t, []stream.EventName{
			stream.EventProgress, stream.EventText, stream.EventText, stream.EventComplete,
		}, streamtest.Names(events))
		assert.Equal(t, stream.Progress{Status: "starting", Message: "正在生成大纲..."}, events[0].Data)

		done, ok := streamtest.Last(events).Data.(outline.Completion)
		require.True(t, ok)
		assert.Equal(t, generatedOutline, done.Outline)
		require.Len(t, done.Pages, 3)
		assert.Equal(t, entity.PageTypeSummary, done.Pages[2].Type)
		assert.False(t, done.HasResearch)

		reqs := text.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, outline.KindOutline, reqs[0].Workflow)
		assert.Contains(t, reqs[0].Prompt, "露营")
		assert.NotEmpty(t, reqs[0].System)
	})

	t.Run("attaches research when search succeeds", func(t *testing.T) {
		t.Parallel()

		text := streamtest.Replying(generatedOutline)
		researcher := &fakeResearcher{SearchFn: func(_ context.Context, query string, maxResults int) entity.ResearchOutcome {
			assert.Equal(t, "露营", query)
			assert.Equal(t, 3, maxResults)
			return entity.ResearchOutcome{
				Success:         true,
				HasResearch:     true,
				ResearchContent: []entity.ResearchItem{{Title: "营地推荐", Content: "山谷营地", Source: "知乎"}},
			}
		}}
		g := outline.NewGenerator(text, prompt.NewRegistry(),
			outline.WithResearcher(researcher), outline.WithSearchMaxResults(3))

		events := streamtest.Drain(t, g.Stream(context.Background(), outline.GenerateInput{Topic: "露营", UseSearch: true}))

		assert.Equal(t, "正在联网搜索相关资料...", events[0].Data.(stream.Progress).Message)
		done := streamtest.Last(events).Data.(outline.Completion)
		assert.True(t, done.HasResearch)
		assert.Contains(t, text.Requests()[0].Prompt, "山谷营地")
	})

	t.Run("search failure does not stop generation", func(t *testing.T) {
		t.Parallel()

		researcher := &fakeResearcher{SearchFn: func(context.Context, string, int) entity.ResearchOutcome {
			return entity.ResearchOutcome{Success: false, Error: "搜索引擎不可用，请检查配置"}
		}}
		g := outline.NewGenerator(streamtest.Replying(generatedOutline), prompt.NewRegistry(),
			outline.WithResearcher(researcher))

		events := streamtest.Drain(t, g.Stream(context.Background(), outline.GenerateInput{Topic: "露营", UseSearch: true}))

		last := streamtest.Last(events)
		require.Equal(t, stream.EventComplete, last.Name)
		assert.False(t, last.Data.(outline.Completion).HasResearch)
	})

	t.Run("search is skipped when not requested", func(t *testing.T) {
		t.Parallel()

		researcher := &fakeResearcher{SearchFn: func(context.Context, string, int) entity.ResearchOutcome {
			t.Error("unexpected search")
			return entity.ResearchOutcome{}
		}}
		g := outline.NewGenerator(streamtest.Replying(generatedOutline), prompt.NewRegistry(),
			outline.WithResearcher(researcher))

		events := streamtest.Drain(t, g.Stream(context.Background(), outline.GenerateInput{Topic: "露营"}))

		assert.Equal(t, stream.EventComplete, streamtest.Last(events).Name)
	})

	t.Run("passes images and hints about them", func(t *testing.T) {
		t.Parallel()

		text := streamtest.Replying(generatedOutline)
		g := outline.NewGenerator(text, prompt.NewRegistry())
		images := [][]byte{{0x89, 'P', 'N', 'G'}, {0xff, 0xd8}}

		streamtest.Drain(t, g.Stream(context.Background(), outline.GenerateInput{Topic: "穿搭", Images: images}))

		req := text.Requests()[0]
		assert.Equal(t, images, req.Images)
		assert.Contains(t, req.Prompt, "2 张参考图片")
	})

	t.Run("open failure yields a single error", func(t *testing.T) {
		t.Parallel()

		text := &streamtest.TextGenerator{GenerateTextFn: func(context.Context, port.TextRequest) (stream.TextSource, error) {
			return nil, errors.New("文本服务商 gemini 未配置 API Key")
		}}
		g := outline.NewGenerator(text, prompt.NewRegistry())

		events := streamtest.Drain(t, g.Stream(context.Background(), outline.GenerateInput{Topic: "露营"}))

		assert.Equal(t, []stream.EventName{stream.EventProgress, stream.EventError}, streamtest.Names(events))
		assert.Equal(t, stream.Failure{Error: "文本服务商 gemini 未配置 API Key"}, events[1].Data)
	})

	t.Run("empty topic", func(t *testing.T) {
		t.Parallel()

		g := outline.NewGenerator(streamtest.Replying(), prompt.NewRegistry())

		events := streamtest.Drain(t, g.Stream(context.Background(), outline.GenerateInput{Topic: "  "}))

		require.Len(t, events, 1)
		assert.Equal(t, stream.Failure{Error: "参数错误：topic 不能为空。"}, events[0].Data)
	})
}

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	t.Run("collects and parses", func(t *testing.T) {
		t.Parallel()

		g := outline.NewGenerator(streamtest.Replying("[封面]\nA", "\n<page>\n[总结]\nB"), prompt.NewRegistry())

		res, err := g.Generate(context.Background(), outline.GenerateInput{Topic: "露营"})

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "[封面]\nA\n<page>\n[总结]\nB", res.Outline)
		assert.Len(t, res.Pages, 2)
	})

	t.Run("stream error becomes failed result", func(t *testing.T) {
		t.Parallel()

		text := &streamtest.TextGenerator{GenerateTextFn: func(context.Context, port.TextRequest) (stream.TextSource, error) {
			return &streamtest.Source{Chunks: []string{"[封面]"}, Err: errors.New("upstream reset")}, nil
		}}
		g := outline.NewGenerator(text, prompt.NewRegistry())

		res, err := g.Generate(context.Background(), outline.GenerateInput{Topic: "露营"})

		require.Error(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "upstream reset", res.Error)
	})
}

func TestGenerator_ModifyStream(t *testing.T) {
	t.Parallel()

	t.Run("reports page count change", func(t *testing.T) {
		t.Parallel()

		text := streamtest.Replying("[封面]\nA\n<page>\n[总结]\nB")
		g := outline.NewGenerator(text, prompt.NewRegistry())
		current := outline.ParseOutline("[封面]\nA\n<page>\n[内容]\nX\n<page>\n[内容]\nY\n<page>\n[总结]\nB")

		events := streamtest.Drain(t, g.ModifyStream(context.Background(), outline.ModifyInput{
			Topic:       "露营",
			Current:     current,
			Instruction: "删掉中间两页",
		}))

		assert.Equal(t, stream.Progress{Status: "starting", Message: "正在分析修改指令..."}, events[0].Data)
		done, ok := streamtest.Last(events).Data.(outline.ModifyCompletion)
		require.True(t, ok)
		assert.Equal(t, "从 4 页精简到 2 页", done.Summary)
		assert.Len(t, done.Pages, 2)

		req := text.Requests()[0]
		assert.Equal(t, outline.KindModify, req.Workflow)
		assert.Contains(t, req.Prompt, "删掉中间两页")
		assert.Contains(t, req.Prompt, "[内容]\nX")
	})

	t.Run("reconstructs raw from pages", func(t *testing.T) {
		t.Parallel()

		text := streamtest.Replying("[封面]\nA2\n<page>\n[总结]\nB2")
		g := outline.NewGenerator(text, prompt.NewRegistry())

		events := streamtest.Drain(t, g.ModifyStream(context.Background(), outline.ModifyInput{
			Topic: "露营",
			Current: entity.Outline{Pages: []entity.Page{
				{Index: 0, Type: entity.PageTypeCover, Content: "A"},
				{Index: 1, Type: entity.PageTypeSummary, Content: "B"},
			}},
			Instruction: "润色",
		}))

		assert.Equal(t, "保持 2 页，优化了内容", streamtest.Last(events).Data.(outline.ModifyCompletion).Summary)
		assert.Contains(t, text.Requests()[0].Prompt, "[封面]\nA\n\n<page>\n\n[总结]\nB")
	})

	t.Run("empty outline yields a single error", func(t *testing.T) {
		t.Parallel()

		text := streamtest.Replying("unused")
		g := outline.NewGenerator(text, prompt.NewRegistry())

		events := streamtest.Drain(t, g.ModifyStream(context.Background(), outline.ModifyInput{
			Topic:       "露营",
			Current:     entity.Outline{Raw: " ", Pages: []entity.Page{{Content: "  "}}},
			Instruction: "扩写",
		}))

		require.Len(t, events, 1)
		assert.Equal(t, stream.EventError, events[0].Name)
		assert.Equal(t, stream.Failure{Error: "当前大纲为空，无法修改。请先生成大纲内容。"}, events[0].Data)
		assert.Empty(t, text.Requests())
	})
}
