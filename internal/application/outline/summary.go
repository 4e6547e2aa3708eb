package outline

import "fmt"

// SummarizeModification 根据修改前后的页数生成一行摘要
func SummarizeModification(originalCount, modifiedCount int) string {
	switch {
	case modifiedCount < originalCount:
		return fmt.Sprintf("从 %d 页精简到 %d 页", originalCount, modifiedCount)
	case modifiedCount > originalCount:
		return fmt.Sprintf("从 %d 页扩展到 %d 页", originalCount, modifiedCount)
	default:
		return fmt.Sprintf("保持 %d 页，优化了内容", originalCount)
	}
}
