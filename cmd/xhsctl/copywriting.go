package main

import (
	"github.com/spf13/cobra"

	"xhs-content-ai-api/internal/application/copywriting"
	"xhs-content-ai-api/internal/domain/entity"
)

type copywritingOutput struct {
	Tier string `json:"tier"`
	entity.CopywritingResult
}

func newCopywritingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copywriting",
		Short: "Copywriting parsing tools",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "parse <file|->",
		Short: "Extract titles, body and tags from generated copywriting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			result, tier := copywriting.Parse(string(data))
			return writeJSON(cmd, copywritingOutput{Tier: string(tier), CopywritingResult: result})
		},
	})
	return cmd
}
