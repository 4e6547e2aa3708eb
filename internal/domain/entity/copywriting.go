package entity

// CopywritingResult 文案生成结果
// Titles 保持生成顺序，不去重；Title 为 Titles 的第一项
type CopywritingResult struct {
	Title   string   `json:"title"`
	Titles  []string `json:"titles"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// NewCopywritingResult 创建空结果，切片字段序列化为 []
func NewCopywritingResult() CopywritingResult {
	return CopywritingResult{
		Titles: []string{},
		Tags:   []string{},
	}
}

// SetTitles 设置备选标题并默认选中第一个
func (r *CopywritingResult) SetTitles(titles []string) {
	if titles == nil {
		titles = []string{}
	}
	r.Titles = titles
	r.Title = ""
	if len(titles) > 0 {
		r.Title = titles[0]
	}
}
