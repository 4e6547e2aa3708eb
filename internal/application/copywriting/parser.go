// Package copywriting 负责笔记文案的生成与解析
package copywriting

import (
	"encoding/json"
	"regexp"
	"strings"

	"xhs-content-ai-api/internal/domain/entity"
)

// Tier 解析结果来自哪一层
type Tier string

const (
	// TierJSON 从 ```json 代码块解析
	TierJSON Tier = "json"
	// TierLabeled 从 标题：/正文：/标签： 标签解析
	TierLabeled Tier = "labeled"
	// TierPlain 没有任何可识别结构，首行作标题、全文作正文
	TierPlain Tier = "plain"
)

// 空白包含 \p{Z}，覆盖全角空格等 Unicode 空白
const nonSpace = `[^\s\p{Z}]`

var (
	jsonBlock    = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	hashTag      = regexp.MustCompile(`#(` + nonSpace + `+)`)
	titleLabel   = regexp.MustCompile(`标题[：:]\s*(.+?)(?:\n|$)`)
	titleLine    = regexp.MustCompile(`标题[：:]\s*.+\n`)
	contentLabel = regexp.MustCompile(`(?s)正文[：:]\s*\n+(.+?)(?:\n标签[：:]|$)`)
	tagsLabel    = regexp.MustCompile(`标签[：:]\s*(.+)`)
	tagsSplit    = regexp.MustCompile(`标签[：:]`)
)

// Parse 解析模型输出的文案
//
// 依次尝试 JSON 代码块与标签格式，任何输入都会得到结果，不返回错误。
// 对无法识别的输入会静默降级为首行作标题、全文作正文，调用方可通过 Tier 判断。
func Parse(text string) (entity.CopywritingResult, Tier) {
	if result, ok := parseJSON(text); ok {
		return result, TierJSON
	}
	return parseLabeled(text)
}

func parseJSON(text string) (entity.CopywritingResult, bool) {
	m := jsonBlock.FindStringSubmatch(text)
	if m == nil {
		return entity.CopywritingResult{}, false
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(m[1]), &data); err != nil {
		return entity.CopywritingResult{}, false
	}

	result := entity.NewCopywritingResult()

	if raw, ok := data["titles"].([]any); ok {
		titles := make([]string, 0, len(raw))
		for _, item := range raw {
			s, ok := item.(string)
			if !ok {
				return entity.CopywritingResult{}, false
			}
			if s = strings.TrimSpace(s); s != "" {
				titles = append(titles, s)
			}
		}
		result.SetTitles(titles)
	} else if raw, present := data["title"]; present {
		s, ok := raw.(string)
		if !ok {
			return entity.CopywritingResult{}, false
		}
		result.SetTitles([]string{strings.TrimSpace(s)})
	}

	switch v := data["copywriting"].(type) {
	case nil:
	case string:
		result.Content = v
	default:
		return entity.CopywritingResult{}, false
	}

	switch v := data["tags"].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				result.Tags = append(result.Tags, s)
			}
		}
	case string:
		result.Tags = extractTags(v)
	}

	return result, true
}

func parseLabeled(text string) (entity.CopywritingResult, Tier) {
	result := entity.NewCopywritingResult()
	tier := TierPlain

	if m := titleLabel.FindStringSubmatch(text); m != nil {
		result.SetTitles([]string{strings.TrimSpace(m[1])})
		tier = TierLabeled
	} else {
		first, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
		result.SetTitles([]string{strings.TrimSpace(first)})
	}

	if m := contentLabel.FindStringSubmatch(text); m != nil {
		result.Content = strings.TrimSpace(m[1])
		tier = TierLabeled
	} else {
		withoutTitle := titleLine.ReplaceAllString(text, "")
		result.Content = strings.TrimSpace(tagsSplit.Split(withoutTitle, 2)[0])
	}

	if m := tagsLabel.FindStringSubmatch(text); m != nil {
		result.Tags = extractTags(m[1])
		tier = TierLabeled
	} else {
		result.Tags = extractTags(text)
	}

	return result, tier
}

func extractTags(s string) []string {
	matches := hashTag.FindAllStringSubmatch(s, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}
