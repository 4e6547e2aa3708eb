// Package entity 定义领域实体
package entity

import "strings"

// PageType 页面类型
type PageType string

const (
	PageTypeCover   PageType = "cover"
	PageTypeContent PageType = "content"
	PageTypeSummary PageType = "summary"
)

var markerToPageType = map[string]PageType{
	"封面": PageTypeCover,
	"内容": PageTypeContent,
	"总结": PageTypeSummary,
}

// ParsePageMarker 将方括号内的标记（如 "封面"）映射为页面类型，未识别时为 content
func ParsePageMarker(token string) PageType {
	if t, ok := markerToPageType[token]; ok {
		return t
	}
	return PageTypeContent
}

// Label 返回页面类型对应的方括号标签，未知类型按 [内容] 处理
func (t PageType) Label() string {
	switch t {
	case PageTypeCover:
		return "[封面]"
	case PageTypeSummary:
		return "[总结]"
	default:
		return "[内容]"
	}
}

// Page 大纲中的单个页面
type Page struct {
	Index   int      `json:"index"`
	Type    PageType `json:"type"`
	Content string   `json:"content"`
}

// Outline 大纲
// Raw 非空时为权威数据，Pages 可由其解析得到
type Outline struct {
	Raw   string `json:"raw"`
	Pages []Page `json:"pages"`
}

// IsEmpty 原文与页面均为空
func (o Outline) IsEmpty() bool {
	if strings.TrimSpace(o.Raw) != "" {
		return false
	}
	for _, p := range o.Pages {
		if strings.TrimSpace(p.Content) != "" {
			return false
		}
	}
	return true
}
