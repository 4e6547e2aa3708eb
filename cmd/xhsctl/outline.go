package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"xhs-content-ai-api/internal/application/outline"
	"xhs-content-ai-api/internal/domain/entity"
)

func newOutlineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outline",
		Short: "Outline parsing tools",
	}
	cmd.AddCommand(newOutlineParseCmd(), newOutlineRebuildCmd())
	return cmd
}

func newOutlineParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file|->",
		Short: "Split outline text into typed pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			o := outline.ParseOutline(string(data))
			if o.Pages == nil {
				o.Pages = []entity.Page{}
			}
			return writeJSON(cmd, o)
		},
	}
}

func newOutlineRebuildCmd() *cobra.Command {
	var summaryFrom int

	cmd := &cobra.Command{
		Use:   "rebuild <pages.json|->",
		Short: "Rebuild outline text from pages",
		Long: `Rebuild outline text from a JSON array of pages or an object with a "pages" field.
With --compare N the output also carries the modification summary against N original pages.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			pages, err := decodePages(data)
			if err != nil {
				return err
			}

			out := map[string]any{
				"raw":   outline.ReconstructRaw(pages),
				"pages": len(pages),
			}
			if summaryFrom > 0 {
				out["summary"] = outline.SummarizeModification(summaryFrom, len(pages))
			}
			return writeJSON(cmd, out)
		},
	}
	cmd.Flags().IntVar(&summaryFrom, "compare", 0, "original page count used to summarize the change")
	return cmd
}

func decodePages(data []byte) ([]entity.Page, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pages []entity.Page
		if err := json.Unmarshal(data, &pages); err != nil {
			return nil, fmt.Errorf("decode pages: %w", err)
		}
		return pages, nil
	}
	var o entity.Outline
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("decode outline: %w", err)
	}
	return o.Pages, nil
}
