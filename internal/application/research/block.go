package research

import (
	"fmt"
	"strings"

	"xhs-content-ai-api/internal/domain/entity"
)

// BuildResearchBlock 将搜索结果渲染为提示词中的参考资料段落，无资料时返回空串
func BuildResearchBlock(outcome entity.ResearchOutcome) string {
	if !outcome.HasResearch || len(outcome.ResearchContent) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("【参考资料】\n以下是联网搜索到的相关资料，可作为创作参考，注意甄别时效性：\n")
	for i, it := range outcome.ResearchContent {
		fmt.Fprintf(&b, "\n%d. %s", i+1, it.Title)
		if it.Source != "" {
			fmt.Fprintf(&b, "（%s）", it.Source)
		}
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(it.Content))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
