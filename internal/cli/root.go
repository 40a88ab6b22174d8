package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soyeahso/deepresearch/internal/config"
	"github.com/soyeahso/deepresearch/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	var (
		model          string
		systemPrompt   string
		noGooglePrompt bool
	)

	cmd := &cobra.Command{
		Use:   "deepresearch [question]",
		Short: "deepresearch — research assistant backed by Gemini and web search",
		Long: "deepresearch forwards a research question to a Gemini agent equipped with " +
			"an internet search tool and prints the report. With no question it reads " +
			"questions interactively until you type 'quit' or 'exit'.",
		Args: cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level, "pretty")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResearch(cmd, args, researchOptions{
				model:          model,
				systemPrompt:   systemPrompt,
				noGooglePrompt: noGooglePrompt,
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.deepresearch/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.Flags().StringVar(&model, "model", "", "LLM model identifier (default gemini-2.5-flash-lite)")
	cmd.Flags().StringVar(&systemPrompt, "system-prompt", "", "override for the agent system prompt")
	cmd.Flags().BoolVar(&noGooglePrompt, "no-google-prompt", false, "fail immediately if GOOGLE_API_KEY is missing instead of prompting")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
