// Package outline 负责图文大纲的生成、解析、重建与修改
package outline

import (
	"regexp"
	"strings"

	"xhs-content-ai-api/internal/domain/entity"
)

const legacySeparator = "---"

var (
	pageDelimiter = regexp.MustCompile(`(?i)<page>`)
	pageMarker    = regexp.MustCompile(`^\[(\S+)\]`)
	displayMarker = regexp.MustCompile(`^\[\S+\]\s*`)
)

// ParsePages 将大纲文本切分为页面
// 文本中出现 <page>（不区分大小写）时按其切分，否则按 --- 切分；
// 空白段落被丢弃且不占用序号。页面内容保留首行的类型标记。
func ParsePages(text string) []entity.Page {
	var segments []string
	if pageDelimiter.MatchString(text) {
		segments = pageDelimiter.Split(text, -1)
	} else {
		segments = strings.Split(text, legacySeparator)
	}

	pages := make([]entity.Page, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		pages = append(pages, entity.Page{
			Index:   len(pages),
			Type:    detectPageType(seg),
			Content: seg,
		})
	}
	return pages
}

// ParseOutline 解析原文并返回完整大纲
func ParseOutline(raw string) entity.Outline {
	return entity.Outline{Raw: raw, Pages: ParsePages(raw)}
}

// StripPageMarker 去掉内容开头的类型标记，用于展示
func StripPageMarker(content string) string {
	return displayMarker.ReplaceAllString(strings.TrimSpace(content), "")
}

func detectPageType(segment string) entity.PageType {
	m := pageMarker.FindStringSubmatch(segment)
	if m == nil {
		return entity.PageTypeContent
	}
	return entity.ParsePageMarker(m[1])
}
