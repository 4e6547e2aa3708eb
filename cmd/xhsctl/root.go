package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"xhs-content-ai-api/pkg/logger"
)

// Version 版本信息，构建时注入
var Version = "dev"

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "xhsctl",
		Short: "Offline tools for outline and copywriting parsing",
		Long: `xhsctl exercises the content pipeline without the HTTP service:

  outline parse       split generated outline text into pages
  outline rebuild     rebuild outline text from a pages JSON document
  copywriting parse   extract titles, body and tags from generated copywriting
  search              run a web search with the configured provider

All commands print JSON to stdout.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.InitWithWriter(cmd.ErrOrStderr(), logLevel, "text")
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(newOutlineCmd(), newCopywritingCmd(), newSearchCmd())
	return root
}

// readInput 读取文件内容，"-" 表示标准输入
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
