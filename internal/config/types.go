package config

// Config is the root configuration for deepresearch.
type Config struct {
	Model              string        `yaml:"model,omitempty"`              // Gemini model ID
	SystemPrompt       string        `yaml:"systemPrompt,omitempty"`       // override for the research prompt
	MaxTokens          int           `yaml:"maxTokens,omitempty"`          // max output tokens per completion
	Temperature        *float64      `yaml:"temperature,omitempty"`        // sampling temperature
	MaxToolRounds      int           `yaml:"maxToolRounds,omitempty"`      // tool-call rounds per question
	RequestTimeoutSecs int           `yaml:"requestTimeoutSecs,omitempty"` // 0 blocks indefinitely
	PromptForGoogleKey *bool         `yaml:"promptForGoogleKey,omitempty"` // ask for GOOGLE_API_KEY when missing; default true
	Search             SearchConfig  `yaml:"search,omitempty"`
	Logging            LoggingConfig `yaml:"logging,omitempty"`
}

// SearchConfig controls the web search tool.
type SearchConfig struct {
	MaxResults        int    `yaml:"maxResults,omitempty"`
	Topic             string `yaml:"topic,omitempty"` // "general" | "news" | "finance"
	Depth             string `yaml:"depth,omitempty"` // "basic" | "advanced"
	IncludeRawContent bool   `yaml:"includeRawContent,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	Style string `yaml:"style,omitempty"` // "pretty" | "json"
}

// ConfigError describes a configuration problem.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// Defaults returns the built-in configuration.
func Defaults() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}
