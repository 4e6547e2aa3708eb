package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"xhs-content-ai-api/internal/application/copywriting"
	"xhs-content-ai-api/internal/interfaces/http/dto"
	"xhs-content-ai-api/pkg/logger"
)

// CopywritingHandler 文案生成
type CopywritingHandler struct {
	generator *copywriting.Generator
}

// NewCopywritingHandler 创建文案处理器
func NewCopywritingHandler(generator *copywriting.Generator) *CopywritingHandler {
	return &CopywritingHandler{generator: generator}
}

// StreamCopywriting 流式生成文案
// @Summary 流式生成文案
// @Description complete 事件携带 raw / title / titles / content / tags
// @Tags Copywriting
// @Accept json
// @Produce text/event-stream
// @Param body body dto.CopywritingRequest true "主题与大纲"
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.GenerationFailure
// @Router /api/copywriting/stream [post]
func (h *CopywritingHandler) StreamCopywriting(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CopywritingRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		strings.TrimSpace(req.Topic) == "" || dto.IsMissingOutline(req.Outline) {
		logger.Warn(ctx, "copywriting request missing arguments")
		dto.Fail(c, http.StatusBadRequest, dto.MsgCopywritingArgsRequired)
		return
	}

	logger.Info(ctx, "request received",
		"path", "/api/copywriting/stream",
		"topic", logger.Preview(req.Topic, 50),
	)

	writeSSE(c, h.generator.Stream(ctx, copywriting.Input{
		Topic:   req.Topic,
		Outline: *req.Outline,
	}))
}
