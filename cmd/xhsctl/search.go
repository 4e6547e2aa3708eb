package main

import (
	"strings"

	"github.com/spf13/cobra"

	"xhs-content-ai-api/internal/application/research"
	"xhs-content-ai-api/internal/config"
	"xhs-content-ai-api/internal/domain/entity"
)

func newSearchCmd() *cobra.Command {
	var (
		configDir  string
		provider   string
		maxResults int
		asBlock    bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a web search with the configured provider",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFrom(configDir)
			if err != nil {
				return err
			}
			if provider != "" {
				cfg.Search.ActiveProvider = provider
			}

			ctx := cmd.Context()
			o := research.NewOrchestrator(ctx, cfg.Search)
			outcome := o.Search(ctx, strings.Join(args, " "), maxResults)

			if asBlock {
				_, err := cmd.OutOrStdout().Write([]byte(research.BuildResearchBlock(outcome) + "\n"))
				return err
			}
			return writeJSON(cmd, outcome)
		},
	}

	cmd.Flags().StringVar(&configDir, "config", config.DefaultDir, "config directory")
	cmd.Flags().StringVar(&provider, "provider", "", "override the active search provider")
	cmd.Flags().IntVar(&maxResults, "max", entity.DefaultSearchMaxResults, "maximum number of results")
	cmd.Flags().BoolVar(&asBlock, "block", false, "print the prompt reference block instead of JSON")
	return cmd
}
