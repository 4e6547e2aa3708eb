package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"xhs-content-ai-api/internal/application/outline"
	"xhs-content-ai-api/internal/interfaces/http/dto"
	"xhs-content-ai-api/pkg/logger"
)

// OutlineHandler 大纲生成与修改
type OutlineHandler struct {
	generator     *outline.Generator
	maxUploadSize int64
}

// NewOutlineHandler 创建大纲处理器，maxUploadSize <= 0 表示不限制请求体大小
func NewOutlineHandler(generator *outline.Generator, maxUploadSize int64) *OutlineHandler {
	return &OutlineHandler{generator: generator, maxUploadSize: maxUploadSize}
}

// GenerateOutline 生成大纲
// @Summary 生成大纲
// @Description 支持 multipart（images 为文件）与 JSON（images 为 base64）两种请求
// @Tags Outline
// @Accept json,mpfd
// @Produce json
// @Success 200 {object} outline.Result
// @Failure 400 {object} dto.GenerationFailure
// @Failure 500 {object} outline.Result
// @Router /api/outline [post]
func (h *OutlineHandler) GenerateOutline(c *gin.Context) {
	ctx := c.Request.Context()
	in, ok := h.bindOutline(c, "/api/outline")
	if !ok {
		return
	}

	result, err := h.generator.Generate(ctx, outline.GenerateInput{
		Topic:     in.Topic,
		Images:    in.Images,
		UseSearch: in.UseSearch,
	})
	if err != nil {
		logger.Error(ctx, "outline generation failed", err)
		c.JSON(http.StatusInternalServerError, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// StreamOutline 流式生成大纲
// @Summary 流式生成大纲
// @Description SSE 事件：progress / text / complete / error
// @Tags Outline
// @Accept json,mpfd
// @Produce text/event-stream
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.GenerationFailure
// @Router /api/outline/stream [post]
func (h *OutlineHandler) StreamOutline(c *gin.Context) {
	in, ok := h.bindOutline(c, "/api/outline/stream")
	if !ok {
		return
	}

	writeSSE(c, h.generator.Stream(c.Request.Context(), outline.GenerateInput{
		Topic:     in.Topic,
		Images:    in.Images,
		UseSearch: in.UseSearch,
	}))
}

// ModifyOutlineStream 按指令流式修改大纲
// @Summary 流式修改大纲
// @Tags Outline
// @Accept json
// @Produce text/event-stream
// @Param body body dto.ModifyOutlineRequest true "修改请求"
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.GenerationFailure
// @Router /api/outline/modify/stream [post]
func (h *OutlineHandler) ModifyOutlineStream(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ModifyOutlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx, "outline modify request rejected", "error", err.Error())
		dto.Fail(c, http.StatusBadRequest, dto.MsgModifyBodyRequired)
		return
	}

	switch {
	case strings.TrimSpace(req.Topic) == "":
		dto.Fail(c, http.StatusBadRequest, dto.MsgModifyTopicRequired)
		return
	case dto.IsMissingOutline(req.CurrentOutline):
		dto.Fail(c, http.StatusBadRequest, dto.MsgCurrentOutlineRequired)
		return
	case strings.TrimSpace(req.Instruction) == "":
		dto.Fail(c, http.StatusBadRequest, dto.MsgInstructionRequired)
		return
	}

	logger.Info(ctx, "request received",
		"path", "/api/outline/modify/stream",
		"topic", logger.Preview(req.Topic, 50),
		"instruction", logger.Preview(req.Instruction, 50),
		"current_pages", len(req.CurrentOutline.Pages),
	)

	writeSSE(c, h.generator.ModifyStream(ctx, outline.ModifyInput{
		Topic:       req.Topic,
		Current:     *req.CurrentOutline,
		Instruction: req.Instruction,
	}))
}

// bindOutline 解析并校验大纲请求，失败时已写入响应
func (h *OutlineHandler) bindOutline(c *gin.Context, path string) (dto.OutlineInput, bool) {
	ctx := c.Request.Context()
	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	}

	in, err := dto.BindOutlineRequest(c)
	if err != nil {
		logger.Warn(ctx, "outline request rejected", "path", path, "error", err.Error())
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			dto.Fail(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("参数错误：上传内容超过 %d MB 限制。", h.maxUploadSize>>20))
		case errors.Is(err, dto.ErrInvalidImage):
			dto.Fail(c, http.StatusBadRequest, "参数错误：images 不是有效的 base64 图片。")
		default:
			dto.Fail(c, http.StatusBadRequest, "参数错误：请求体格式无效。\n"+err.Error())
		}
		return dto.OutlineInput{}, false
	}

	if strings.TrimSpace(in.Topic) == "" {
		logger.Warn(ctx, "outline request missing topic", "path", path)
		dto.Fail(c, http.StatusBadRequest, dto.MsgTopicRequired)
		return dto.OutlineInput{}, false
	}

	logger.Info(ctx, "request received",
		"path", path,
		"topic", logger.Preview(in.Topic, 50),
		"images", len(in.Images),
		"use_search", in.UseSearch,
	)
	return in, true
}
