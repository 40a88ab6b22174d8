package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/soyeahso/deepresearch/internal/llm"
	"github.com/soyeahso/deepresearch/internal/logging"
)

// InvocationError wraps a failure from the LLM provider or its tools.
type InvocationError struct {
	Err error
}

func (e *InvocationError) Error() string { return fmt.Sprintf("agent invocation failed: %v", e.Err) }

func (e *InvocationError) Unwrap() error { return e.Err }

// Config configures an Invoker.
type Config struct {
	Model         string
	SystemPrompt  string
	MaxTokens     int
	Temperature   *float64
	MaxToolRounds int
}

// Invoker drives one question through the model's tool-call loop and
// returns the final answer. It keeps no state between calls: every Ask
// starts from a conversation containing only the current question.
type Invoker struct {
	cfg    Config
	client llm.Client
	tools  *Registry
	log    *logging.Logger
}

// NewInvoker creates an Invoker.
func NewInvoker(cfg Config, client llm.Client, tools *Registry, log *logging.Logger) *Invoker {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.MaxToolRounds == 0 {
		cfg.MaxToolRounds = 8
	}
	return &Invoker{
		cfg:    cfg,
		client: client,
		tools:  tools,
		log:    log.Sub("agent"),
	}
}

// Ask sends the question to the model, executing requested tool calls
// until the model produces a final text answer. Transport and provider
// failures surface as InvocationError; no retries are attempted.
func (inv *Invoker) Ask(ctx context.Context, question string) (string, error) {
	start := time.Now()
	turnID := uuid.NewString()[:8]
	log := inv.log.Sub("turn." + turnID)

	messages := []llm.Message{
		{Role: llm.RoleUser, Content: question},
	}

	var final *llm.CompletionResponse
	for round := 0; round < inv.cfg.MaxToolRounds; round++ {
		req := llm.CompletionRequest{
			Model:       inv.cfg.Model,
			System:      inv.cfg.SystemPrompt,
			Messages:    messages,
			Tools:       inv.tools.Definitions(),
			MaxTokens:   inv.cfg.MaxTokens,
			Temperature: inv.cfg.Temperature,
		}

		resp, err := inv.client.Complete(ctx, req)
		if err != nil {
			return "", &InvocationError{Err: err}
		}
		final = resp

		if len(resp.ToolCalls) == 0 {
			break
		}

		log.Debug().Int("round", round).Int("toolCalls", len(resp.ToolCalls)).Msg("executing tool calls")

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		messages = append(messages, llm.Message{
			Role:        llm.RoleTool,
			ToolResults: inv.executeToolCalls(ctx, log, resp.ToolCalls),
		})
	}

	if final == nil {
		return "", &InvocationError{Err: fmt.Errorf("no response from model")}
	}

	log.Info().
		Str("model", inv.cfg.Model).
		Int("inputTokens", final.Usage.InputTokens).
		Int("outputTokens", final.Usage.OutputTokens).
		Dur("duration", time.Since(start)).
		Msg("answer generated")

	return final.Content, nil
}

// executeToolCalls runs each requested tool. Failures are reported back to
// the model as error payloads rather than aborting the turn.
func (inv *Invoker) executeToolCalls(ctx context.Context, log *logging.Logger, calls []llm.ToolCall) []llm.ToolResult {
	results := make([]llm.ToolResult, 0, len(calls))
	for _, tc := range calls {
		tool, ok := inv.tools.Get(tc.Name)
		if !ok {
			results = append(results, errorResult(tc.Name, fmt.Sprintf("unknown tool: %s", tc.Name)))
			continue
		}

		log.Debug().Str("tool", tc.Name).Msg("executing tool")
		output, err := tool.Execute(ctx, string(tc.Input))
		if err != nil {
			log.Warn().Str("tool", tc.Name).Err(err).Msg("tool execution failed")
			results = append(results, errorResult(tc.Name, err.Error()))
			continue
		}

		content := json.RawMessage(output)
		if !json.Valid(content) {
			content, _ = json.Marshal(map[string]string{"output": output})
		}
		results = append(results, llm.ToolResult{Name: tc.Name, Content: content})
	}
	return results
}

func errorResult(name, msg string) llm.ToolResult {
	content, _ := json.Marshal(map[string]string{"error": msg})
	return llm.ToolResult{Name: name, Content: content}
}
