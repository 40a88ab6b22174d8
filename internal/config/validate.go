package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.MaxTokens < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "maxTokens",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.MaxTokens),
		})
	}

	if cfg.MaxToolRounds < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "maxToolRounds",
			Message: fmt.Sprintf("must be >= 1, got %d", cfg.MaxToolRounds),
		})
	}

	if cfg.RequestTimeoutSecs < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "requestTimeoutSecs",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.RequestTimeoutSecs),
		})
	}

	if cfg.Temperature != nil && (*cfg.Temperature < 0 || *cfg.Temperature > 2) {
		issues = append(issues, ValidationIssue{
			Path:    "temperature",
			Message: fmt.Sprintf("must be 0-2, got %v", *cfg.Temperature),
		})
	}

	validTopics := []string{"general", "news", "finance"}
	if cfg.Search.Topic != "" && !slices.Contains(validTopics, cfg.Search.Topic) {
		issues = append(issues, ValidationIssue{
			Path:    "search.topic",
			Message: fmt.Sprintf("must be one of %v, got %q", validTopics, cfg.Search.Topic),
		})
	}

	validDepths := []string{"basic", "advanced"}
	if cfg.Search.Depth != "" && !slices.Contains(validDepths, cfg.Search.Depth) {
		issues = append(issues, ValidationIssue{
			Path:    "search.depth",
			Message: fmt.Sprintf("must be one of %v, got %q", validDepths, cfg.Search.Depth),
		})
	}

	if cfg.Search.MaxResults < 1 || cfg.Search.MaxResults > 20 {
		issues = append(issues, ValidationIssue{
			Path:    "search.maxResults",
			Message: fmt.Sprintf("must be 1-20, got %d", cfg.Search.MaxResults),
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validLogStyles := []string{"pretty", "json"}
	if cfg.Logging.Style != "" && !slices.Contains(validLogStyles, cfg.Logging.Style) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.style",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogStyles, cfg.Logging.Style),
		})
	}

	return issues
}
