package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/soyeahso/deepresearch/internal/search"
)

// SearchDefaults are applied when the model omits optional arguments.
type SearchDefaults struct {
	MaxResults        int
	Topic             string
	Depth             string
	IncludeRawContent bool
}

// SearchTool exposes the Tavily client to the agent as "internet_search".
type SearchTool struct {
	client   *search.Client
	defaults SearchDefaults
}

// NewSearchTool binds a search client with per-run defaults.
func NewSearchTool(client *search.Client, defaults SearchDefaults) *SearchTool {
	if defaults.MaxResults == 0 {
		defaults.MaxResults = 5
	}
	if defaults.Topic == "" {
		defaults.Topic = "general"
	}
	return &SearchTool{client: client, defaults: defaults}
}

func (t *SearchTool) Name() string { return "internet_search" }

func (t *SearchTool) Description() string {
	return "Run an internet search for a given query. You can specify the max number of results to return, the topic, and whether raw content should be included."
}

func (t *SearchTool) InputSchema() string {
	return `{
  "type": "object",
  "properties": {
    "query": {"type": "string", "description": "The search query"},
    "max_results": {"type": "integer", "description": "Maximum number of results to return"},
    "topic": {"type": "string", "enum": ["general", "news", "finance"], "description": "Search topic category"},
    "include_raw_content": {"type": "boolean", "description": "Include full page content in results"}
  },
  "required": ["query"]
}`
}

// searchInput mirrors the tool's JSON argument shape.
type searchInput struct {
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results,omitempty"`
	Topic             string `json:"topic,omitempty"`
	IncludeRawContent *bool  `json:"include_raw_content,omitempty"`
}

// Execute runs the search and returns the Tavily response as JSON.
func (t *SearchTool) Execute(ctx context.Context, input string) (string, error) {
	var in searchInput
	if err := json.Unmarshal([]byte(input), &in); err != nil {
		return "", fmt.Errorf("invalid internet_search input: %w", err)
	}
	if in.Query == "" {
		return "", fmt.Errorf("internet_search requires a query")
	}

	params := search.Params{
		MaxResults:        t.defaults.MaxResults,
		Topic:             t.defaults.Topic,
		Depth:             t.defaults.Depth,
		IncludeRawContent: t.defaults.IncludeRawContent,
	}
	if in.MaxResults > 0 {
		params.MaxResults = in.MaxResults
	}
	if in.Topic != "" {
		params.Topic = in.Topic
	}
	if in.IncludeRawContent != nil {
		params.IncludeRawContent = *in.IncludeRawContent
	}

	resp, err := t.client.Search(ctx, in.Query, params)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
