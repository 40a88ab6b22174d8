package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/soyeahso/deepresearch/internal/agent"
	"github.com/soyeahso/deepresearch/internal/config"
	"github.com/soyeahso/deepresearch/internal/llm"
	"github.com/soyeahso/deepresearch/internal/search"
	"github.com/soyeahso/deepresearch/internal/secrets"
)

// researchOptions carries root-command flag values.
type researchOptions struct {
	model          string
	systemPrompt   string
	noGooglePrompt bool
}

// runResearch wires credentials, clients, and the agent, then runs either
// a single question or the interactive loop.
func runResearch(cmd *cobra.Command, args []string, opts researchOptions) error {
	// A .env next to the config or in the working directory may carry the
	// API keys. Missing files are fine.
	_ = godotenv.Load(paths.EnvFile)
	_ = godotenv.Load()

	cfg, err := config.Load(paths.Config)
	if err != nil {
		return err
	}

	if opts.model != "" {
		cfg.Model = opts.model
	}
	if opts.systemPrompt != "" {
		cfg.SystemPrompt = opts.systemPrompt
	}
	promptForGoogleKey := cfg.PromptForGoogleKeyEnabled() && !opts.noGooglePrompt

	for _, issue := range config.Validate(&cfg) {
		log.Warn().Str("path", issue.Path).Msg(issue.Message)
	}

	store, err := buildSecretStore(promptForGoogleKey)
	if err != nil {
		return err
	}

	invoker := buildInvoker(cfg, store)

	question := strings.TrimSpace(strings.Join(args, " "))
	if question != "" {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		answer, err := invoker.Ask(ctx, question)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	}

	return runLoop(context.Background(), os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr(), invoker.Ask)
}

// buildSecretStore resolves both API keys up front, before any network
// call. The Tavily key is never promptable; the Google key is unless
// disabled by flag or config.
func buildSecretStore(promptForGoogleKey bool) (secrets.Store, error) {
	resolver := secrets.NewResolver(log)
	return resolver.Resolve([]secrets.Requirement{
		{Name: secrets.TavilyAPIKey},
		{Name: secrets.GoogleAPIKey, AllowPrompt: promptForGoogleKey},
	}, true)
}

// buildInvoker assembles the Gemini client, the search tool, and the agent.
func buildInvoker(cfg config.Config, store secrets.Store) *agent.Invoker {
	searchClient := search.NewClient(store.Value(secrets.TavilyAPIKey))
	tools := agent.NewRegistry()
	tools.Register(agent.NewSearchTool(searchClient, agent.SearchDefaults{
		MaxResults:        cfg.Search.MaxResults,
		Topic:             cfg.Search.Topic,
		Depth:             cfg.Search.Depth,
		IncludeRawContent: cfg.Search.IncludeRawContent,
	}))

	gemini := llm.NewGeminiClient(store.Value(secrets.GoogleAPIKey),
		llm.WithTimeout(time.Duration(cfg.RequestTimeoutSecs)*time.Second))

	return agent.NewInvoker(agent.Config{
		Model:         cfg.Model,
		SystemPrompt:  cfg.SystemPrompt,
		MaxTokens:     cfg.MaxTokens,
		Temperature:   cfg.Temperature,
		MaxToolRounds: cfg.MaxToolRounds,
	}, gemini, tools, log)
}
