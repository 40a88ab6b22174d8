package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soyeahso/deepresearch/internal/config"
	"github.com/soyeahso/deepresearch/internal/secrets"
	"github.com/soyeahso/deepresearch/internal/version"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show deepresearch status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("deepresearch %s (commit %s)\n\n", version.Version, version.Commit)

			fmt.Printf("Config:  %s\n", paths.Config)
			fmt.Printf("Env:     %s\n", paths.EnvFile)
			fmt.Println()

			cfg, err := config.Load(paths.Config)
			if err != nil {
				fmt.Printf("Config:  error loading: %v\n", err)
				return nil
			}

			fmt.Printf("Model:   %s (maxTokens=%d, toolRounds=%d)\n",
				cfg.Model, cfg.MaxTokens, cfg.MaxToolRounds)
			fmt.Printf("Search:  topic=%s maxResults=%d depth=%s\n",
				cfg.Search.Topic, cfg.Search.MaxResults, cfg.Search.Depth)
			if cfg.RequestTimeoutSecs > 0 {
				fmt.Printf("Timeout: %ds\n", cfg.RequestTimeoutSecs)
			} else {
				fmt.Println("Timeout: none (calls block until the provider answers)")
			}
			fmt.Println()

			// Presence only. Values are never printed.
			fmt.Printf("%s: %s\n", secrets.TavilyAPIKey, presence(secrets.TavilyAPIKey))
			fmt.Printf("%s: %s\n", secrets.GoogleAPIKey, presence(secrets.GoogleAPIKey))

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s\n", issue)
				}
			}

			return nil
		},
	}
}

func presence(name string) string {
	if v := os.Getenv(name); v != "" {
		return "set"
	}
	return "missing"
}
