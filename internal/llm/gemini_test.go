package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiTextResponse(text string) string {
	return `{
		"candidates": [{
			"content": {"parts": [{"text": ` + mustJSON(text) + `}], "role": "model"},
			"finishReason": "STOP"
		}],
		"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 34}
	}`
}

func mustJSON(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}

func TestGeminiComplete(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(geminiTextResponse("The capital of France is Paris.")))
	}))
	defer srv.Close()

	client := NewGeminiClient("test-key", WithBaseURL(srv.URL))
	temp := 0.4
	resp, err := client.Complete(context.Background(), CompletionRequest{
		Model:       "gemini-2.5-flash-lite",
		System:      "You are an expert researcher.",
		Messages:    []Message{{Role: RoleUser, Content: "What is the capital of France?"}},
		MaxTokens:   2048,
		Temperature: &temp,
	})
	require.NoError(t, err)

	assert.Equal(t, "The capital of France is Paris.", resp.Content)
	assert.Empty(t, resp.ToolCalls)
	assert.Equal(t, "STOP", resp.StopReason)
	assert.Equal(t, 12, resp.Usage.InputTokens)
	assert.Equal(t, 34, resp.Usage.OutputTokens)

	assert.Equal(t, "/models/gemini-2.5-flash-lite:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)

	// System prompt travels as systemInstruction, not as a content entry.
	require.Contains(t, gotBody, "systemInstruction")
	contents := gotBody["contents"].([]any)
	require.Len(t, contents, 1)
	first := contents[0].(map[string]any)
	assert.Equal(t, "user", first["role"])

	genCfg := gotBody["generationConfig"].(map[string]any)
	assert.EqualValues(t, 2048, genCfg["maxOutputTokens"])
	assert.EqualValues(t, 0.4, genCfg["temperature"])
}

func TestGeminiCompleteFunctionCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"candidates": [{
				"content": {
					"parts": [{"functionCall": {"name": "internet_search", "args": {"query": "golang release date"}}}],
					"role": "model"
				},
				"finishReason": "STOP"
			}]
		}`))
	}))
	defer srv.Close()

	client := NewGeminiClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.Complete(context.Background(), CompletionRequest{
		Model:    "gemini-2.5-flash-lite",
		Messages: []Message{{Role: RoleUser, Content: "When was Go released?"}},
		Tools: []ToolDefinition{{
			Name:        "internet_search",
			Description: "Run a web search.",
			InputSchema: `{"type":"object","properties":{"query":{"type":"string"}},"required":["query"]}`,
		}},
	})
	require.NoError(t, err)

	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "internet_search", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"query": "golang release date"}`, string(resp.ToolCalls[0].Input))
}

func TestGeminiToolDeclarationsAndResults(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(geminiTextResponse("done")))
	}))
	defer srv.Close()

	client := NewGeminiClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Complete(context.Background(), CompletionRequest{
		Model: "gemini-2.5-flash-lite",
		Messages: []Message{
			{Role: RoleUser, Content: "search something"},
			{Role: RoleAssistant, ToolCalls: []ToolCall{
				{Name: "internet_search", Input: json.RawMessage(`{"query":"something"}`)},
			}},
			{Role: RoleTool, ToolResults: []ToolResult{
				{Name: "internet_search", Content: json.RawMessage(`{"results":[]}`)},
			}},
		},
		Tools: []ToolDefinition{{
			Name:        "internet_search",
			Description: "Run a web search.",
			InputSchema: `{"type":"object"}`,
		}},
	})
	require.NoError(t, err)

	contents := gotBody["contents"].([]any)
	require.Len(t, contents, 3)

	model := contents[1].(map[string]any)
	assert.Equal(t, "model", model["role"])
	modelParts := model["parts"].([]any)
	require.Len(t, modelParts, 1)
	assert.Contains(t, modelParts[0].(map[string]any), "functionCall")

	toolMsg := contents[2].(map[string]any)
	assert.Equal(t, "user", toolMsg["role"])
	toolParts := toolMsg["parts"].([]any)
	require.Len(t, toolParts, 1)
	assert.Contains(t, toolParts[0].(map[string]any), "functionResponse")

	tools := gotBody["tools"].([]any)
	require.Len(t, tools, 1)
	decls := tools[0].(map[string]any)["functionDeclarations"].([]any)
	require.Len(t, decls, 1)
	assert.Equal(t, "internet_search", decls[0].(map[string]any)["name"])
}

func TestGeminiCompleteProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	}))
	defer srv.Close()

	client := NewGeminiClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Complete(context.Background(), CompletionRequest{
		Model:    "gemini-2.5-flash-lite",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusTooManyRequests, provErr.Code)
	assert.Contains(t, provErr.Message, "quota exceeded")
}

func TestGeminiCompleteNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	client := NewGeminiClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Complete(context.Background(), CompletionRequest{
		Model:    "gemini-2.5-flash-lite",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	require.Error(t, err)

	var provErr *ProviderError
	assert.ErrorAs(t, err, &provErr)
}

func TestGeminiCompleteMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	client := NewGeminiClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Complete(context.Background(), CompletionRequest{
		Model:    "gemini-2.5-flash-lite",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing response")
}

func TestGeminiUnsupportedRole(t *testing.T) {
	client := NewGeminiClient("test-key")
	_, err := client.Complete(context.Background(), CompletionRequest{
		Model:    "gemini-2.5-flash-lite",
		Messages: []Message{{Role: "system", Content: "nope"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported message role")
}

func TestProviderErrorFormat(t *testing.T) {
	err := &ProviderError{Provider: "gemini", Message: "rate limited", Code: 429}
	assert.Equal(t, "gemini: 429 rate limited", err.Error())

	err2 := &ProviderError{Provider: "gemini", Message: "unknown error"}
	assert.Equal(t, "gemini: unknown error", err2.Error())
}

func TestMockClientRecordsRequests(t *testing.T) {
	mock := &MockClient{ProviderName: "mock"}

	resp, err := mock.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "mock response", resp.Content)
	require.Len(t, mock.Requests, 1)
	assert.Equal(t, "hi", mock.Requests[0].Messages[0].Content)
}
