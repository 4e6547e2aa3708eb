package copywriting

import (
	"strings"

	"xhs-content-ai-api/internal/application/outline"
	"xhs-content-ai-api/internal/domain/entity"
)

const (
	digestPages    = 3
	digestMaxRunes = 150
	emptyDigest    = "（无大纲内容）"
)

// OutlineDigest 取大纲前三页生成概要，供文案提示词使用
// 页面列表为空时从原文解析
func OutlineDigest(o entity.Outline) string {
	pages := o.Pages
	if len(pages) == 0 && strings.TrimSpace(o.Raw) != "" {
		pages = outline.ParsePages(o.Raw)
	}
	if len(pages) == 0 {
		return emptyDigest
	}

	parts := make([]string, 0, digestPages)
	for i, p := range pages {
		if i == digestPages {
			break
		}
		prefix := "内容页："
		if p.Type == entity.PageTypeCover {
			prefix = "封面："
		}
		parts = append(parts, prefix+headRunes(p.Content, digestMaxRunes)+"...")
	}
	return strings.Join(parts, "\n")
}

func headRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
