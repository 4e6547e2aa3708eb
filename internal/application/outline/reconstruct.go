package outline

import (
	"strings"

	"xhs-content-ai-api/internal/domain/entity"
)

// PageSeparator 重建原文时使用的页面分隔
const PageSeparator = "\n\n<page>\n\n"

// ReconstructRaw 由页面列表重建原文，空内容页面被跳过
// 内容已带有类型标记时不重复添加
func ReconstructRaw(pages []entity.Page) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		content := strings.TrimSpace(p.Content)
		if content == "" {
			continue
		}
		label := p.Type.Label()
		if !strings.HasPrefix(content, label) {
			content = label + "\n" + content
		}
		parts = append(parts, content)
	}
	return strings.Join(parts, PageSeparator)
}

// ResolveRaw 优先使用原文，原文为空时由页面重建
func ResolveRaw(o entity.Outline) string {
	if strings.TrimSpace(o.Raw) != "" {
		return o.Raw
	}
	return ReconstructRaw(o.Pages)
}
