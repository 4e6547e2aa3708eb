// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"xhs-content-ai-api/internal/domain/entity"
)

// 请求校验失败时返回给前端的提示
const (
	MsgTopicRequired           = "参数错误：topic 不能为空。\n请提供要生成图文的主题内容。"
	MsgModifyBodyRequired      = "参数错误：请求体不能为空。\n请提供topic、current_outline和instruction参数。"
	MsgModifyTopicRequired     = "参数错误：topic 不能为空。"
	MsgCurrentOutlineRequired  = "参数错误：current_outline 不能为空。"
	MsgInstructionRequired     = "参数错误：instruction 不能为空。"
	MsgCopywritingArgsRequired = "参数错误：topic 和 outline 不能为空"
	MsgQueryRequired           = "参数错误：query 不能为空"
)

// ErrInvalidImage 图片不是有效的 base64 数据
var ErrInvalidImage = errors.New("invalid base64 image")

// OutlineRequest 大纲生成请求（JSON 形式，images 为 base64，可带 data URL 前缀）
type OutlineRequest struct {
	Topic     string   `json:"topic"`
	Images    []string `json:"images"`
	UseSearch bool     `json:"use_search"`
}

// OutlineInput 解析后的大纲生成参数
type OutlineInput struct {
	Topic     string
	Images    [][]byte
	UseSearch bool
}

// ModifyOutlineRequest 大纲修改请求
type ModifyOutlineRequest struct {
	Topic          string          `json:"topic"`
	CurrentOutline *entity.Outline `json:"current_outline"`
	Instruction    string          `json:"instruction"`
}

// CopywritingRequest 文案生成请求
type CopywritingRequest struct {
	Topic   string          `json:"topic"`
	Outline *entity.Outline `json:"outline"`
}

// SearchRequest 联网搜索请求
type SearchRequest struct {
	Query      string `json:"query" form:"query"`
	MaxResults int    `json:"max_results" form:"max_results"`
}

// IsMissingOutline 大纲字段缺失或为空对象
// pages 为 [] 时视为已提供，交由生成服务判断内容是否为空
func IsMissingOutline(o *entity.Outline) bool {
	return o == nil || (o.Raw == "" && o.Pages == nil)
}

// BindOutlineRequest 解析 multipart（images 为文件）或 JSON（images 为 base64）请求
func BindOutlineRequest(c *gin.Context) (OutlineInput, error) {
	if strings.Contains(c.ContentType(), "multipart/form-data") {
		return bindOutlineMultipart(c)
	}

	var req OutlineRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		return OutlineInput{}, err
	}
	images, err := DecodeImages(req.Images)
	if err != nil {
		return OutlineInput{}, err
	}
	return OutlineInput{Topic: req.Topic, Images: images, UseSearch: req.UseSearch}, nil
}

func bindOutlineMultipart(c *gin.Context) (OutlineInput, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return OutlineInput{}, err
	}

	in := OutlineInput{
		Topic:     c.PostForm("topic"),
		UseSearch: strings.EqualFold(c.DefaultPostForm("use_search", "false"), "true"),
	}
	for _, fh := range form.File["images"] {
		if fh == nil || fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return OutlineInput{}, err
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return OutlineInput{}, err
		}
		in.Images = append(in.Images, data)
	}
	return in, nil
}

// DecodeImages 解码 base64 图片，去掉 "data:image/png;base64," 之类的前缀
func DecodeImages(encoded []string) ([][]byte, error) {
	if len(encoded) == 0 {
		return nil, nil
	}
	images := make([][]byte, 0, len(encoded))
	for i, s := range encoded {
		if idx := strings.Index(s, ","); idx >= 0 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		}
		if err != nil {
			return nil, fmt.Errorf("%w: images[%d]", ErrInvalidImage, i)
		}
		images = append(images, data)
	}
	return images, nil
}

// BindSearchRequest 从 JSON 请求体或查询参数绑定搜索请求
func BindSearchRequest(c *gin.Context) (SearchRequest, error) {
	var req SearchRequest
	if c.Request.Method == "GET" {
		req.Query = c.Query("query")
		req.MaxResults = parseIntWithDefault(c.Query("max_results"), 0)
		return req, nil
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return SearchRequest{}, err
	}
	return req, nil
}

// parseIntWithDefault 解析整数，失败时返回默认值
func parseIntWithDefault(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
