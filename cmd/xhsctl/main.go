// Package main xhsctl 命令行工具：离线解析大纲与文案、调试联网搜索
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
