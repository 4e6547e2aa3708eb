// Package handler 提供 HTTP 请求处理器
package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"xhs-content-ai-api/internal/application/stream"
	"xhs-content-ai-api/pkg/logger"
)

// writeSSE 将事件逐个写为 SSE（event: 名称，data: 一行 JSON），
// 终止事件之后或客户端断开时停止
func writeSSE(c *gin.Context, events <-chan stream.Event) {
	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	sent := 0

	c.Stream(func(w io.Writer) bool {
		select {
		case e, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(e.Name), e.Data)
			sent++
			return !e.IsTerminal()

		case <-ctx.Done():
			// 客户端断开
			logger.Debug(ctx, "sse client gone", "events_sent", sent)
			return false
		}
	})
}
