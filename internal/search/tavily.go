// Package search provides the Tavily web-search client used by the
// internet_search agent tool.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

const defaultBaseURL = "https://api.tavily.com"

// Params controls a single search request.
type Params struct {
	MaxResults        int    `json:"maxResults,omitempty"`
	Topic             string `json:"topic,omitempty"` // "general" | "news" | "finance"
	Depth             string `json:"depth,omitempty"` // "basic" | "advanced"
	IncludeRawContent bool   `json:"includeRawContent,omitempty"`
}

// Result is one search hit.
type Result struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content,omitempty"`
	Score      float64 `json:"score,omitempty"`
}

// Response is the parsed Tavily reply.
type Response struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results"`
}

// Client calls the Tavily search API. Rate-limit (429) and transient
// server errors are retried with backoff by the underlying HTTP client.
type Client struct {
	apiKey  string
	baseURL string
	http    *retryablehttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithRetryMax sets the maximum number of retries.
func WithRetryMax(n int) Option {
	return func(c *Client) { c.http.RetryMax = n }
}

// NewClient constructs a Tavily client.
func NewClient(apiKey string, opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil

	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    rc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search posts a query to Tavily and returns the parsed response.
func (c *Client) Search(ctx context.Context, query string, p Params) (*Response, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("tavily: empty query")
	}

	body := map[string]any{
		"api_key": c.apiKey,
		"query":   query,
	}
	if p.MaxResults > 0 {
		body["max_results"] = p.MaxResults
	}
	if p.Topic != "" {
		body["topic"] = p.Topic
	}
	if p.Depth != "" {
		body["search_depth"] = p.Depth
	}
	if p.IncludeRawContent {
		body["include_raw_content"] = true
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("tavily: http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("tavily: decoding response: %w", err)
	}
	return &out, nil
}
