package llm

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ImageMIME 探测图片的 MIME 类型，非图片返回错误
func ImageMIME(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image")
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("unsupported image type: %s", mt.String())
	}
	// 去掉 charset 等参数
	mime, _, _ := strings.Cut(mt.String(), ";")
	return mime, nil
}

// ImageDataURL 将图片编码为 data URL
func ImageDataURL(data []byte) (string, error) {
	mime, err := ImageMIME(data)
	if err != nil {
		return "", err
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
