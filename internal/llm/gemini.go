package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient is a direct HTTP client for the Google Gemini API.
type GeminiClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// GeminiOption configures a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(u string) GeminiOption {
	return func(g *GeminiClient) { g.baseURL = u }
}

// WithTimeout sets the HTTP client timeout. Zero means no timeout: the
// call blocks until the provider answers or the context is cancelled.
func WithTimeout(d time.Duration) GeminiOption {
	return func(g *GeminiClient) { g.client.Timeout = d }
}

// NewGeminiClient creates a Gemini API client. The default client has no
// timeout; pass WithTimeout to bound calls.
func NewGeminiClient(apiKey string, opts ...GeminiOption) *GeminiClient {
	g := &GeminiClient{
		apiKey:  apiKey,
		baseURL: defaultGeminiBaseURL,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns the provider name.
func (g *GeminiClient) Name() string { return "gemini" }

// Complete sends a generateContent request and returns the parsed response.
func (g *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	body, err := g.buildRequestBody(req)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, req.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider: "gemini",
			Message:  truncate(string(respBody), 512),
			Code:     resp.StatusCode,
		}
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(result.Candidates) == 0 {
		return nil, &ProviderError{Provider: "gemini", Message: "response contained no candidates"}
	}

	return g.toCompletion(&result, req.Model, time.Since(start)), nil
}

// buildRequestBody maps the provider-neutral request onto the Gemini wire
// format: contents with user/model roles, functionCall and functionResponse
// parts for tool traffic, functionDeclarations for the tool set.
func (g *GeminiClient) buildRequestBody(req CompletionRequest) (map[string]any, error) {
	contents := make([]map[string]any, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleUser:
			contents = append(contents, map[string]any{
				"role":  "user",
				"parts": []map[string]any{{"text": msg.Content}},
			})

		case RoleAssistant:
			parts := make([]map[string]any, 0, len(msg.ToolCalls)+1)
			if msg.Content != "" {
				parts = append(parts, map[string]any{"text": msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				args, err := rawToMap(tc.Input)
				if err != nil {
					return nil, fmt.Errorf("tool call %s: %w", tc.Name, err)
				}
				parts = append(parts, map[string]any{
					"functionCall": map[string]any{"name": tc.Name, "args": args},
				})
			}
			contents = append(contents, map[string]any{"role": "model", "parts": parts})

		case RoleTool:
			parts := make([]map[string]any, 0, len(msg.ToolResults))
			for _, tr := range msg.ToolResults {
				response, err := rawToMap(tr.Content)
				if err != nil {
					return nil, fmt.Errorf("tool result %s: %w", tr.Name, err)
				}
				parts = append(parts, map[string]any{
					"functionResponse": map[string]any{"name": tr.Name, "response": response},
				})
			}
			contents = append(contents, map[string]any{"role": "user", "parts": parts})

		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}

	body := map[string]any{"contents": contents}

	if req.System != "" {
		body["systemInstruction"] = map[string]any{
			"parts": []map[string]any{{"text": req.System}},
		}
	}

	genCfg := map[string]any{}
	if req.MaxTokens > 0 {
		genCfg["maxOutputTokens"] = req.MaxTokens
	}
	if req.Temperature != nil {
		genCfg["temperature"] = *req.Temperature
	}
	if len(genCfg) > 0 {
		body["generationConfig"] = genCfg
	}

	if len(req.Tools) > 0 {
		decls := make([]map[string]any, 0, len(req.Tools))
		for _, t := range req.Tools {
			decl := map[string]any{
				"name":        t.Name,
				"description": t.Description,
			}
			if t.InputSchema != "" {
				schema, err := rawToMap(json.RawMessage(t.InputSchema))
				if err != nil {
					return nil, fmt.Errorf("tool %s schema: %w", t.Name, err)
				}
				decl["parameters"] = schema
			}
			decls = append(decls, decl)
		}
		body["tools"] = []map[string]any{{"functionDeclarations": decls}}
	}

	return body, nil
}

func (g *GeminiClient) toCompletion(resp *geminiResponse, model string, duration time.Duration) *CompletionResponse {
	candidate := resp.Candidates[0]

	var content bytes.Buffer
	var toolCalls []ToolCall
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			content.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			input, _ := json.Marshal(part.FunctionCall.Args)
			toolCalls = append(toolCalls, ToolCall{
				Name:  part.FunctionCall.Name,
				Input: input,
			})
		}
	}

	return &CompletionResponse{
		Content:    content.String(),
		ToolCalls:  toolCalls,
		StopReason: candidate.FinishReason,
		Usage: Usage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		},
		Model:    model,
		Duration: duration,
	}
}

func rawToMap(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Wire structures.

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

type geminiCandidate struct {
	Content struct {
		Parts []geminiPart `json:"parts"`
		Role  string       `json:"role"`
	} `json:"content"`
	FinishReason string `json:"finishReason"`
}

type geminiPart struct {
	Text         string `json:"text,omitempty"`
	FunctionCall *struct {
		Name string         `json:"name"`
		Args map[string]any `json:"args"`
	} `json:"functionCall,omitempty"`
}
