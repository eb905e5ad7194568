package anthropic

import "time"

// Config holds the Anthropic provider configuration.
type Config struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	FallbackModels []string      `mapstructure:"fallback_models"`
}

// DefaultConfig returns sensible defaults for Anthropic.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://api.anthropic.com",
		Model:     "claude-3-5-haiku-latest",
		Timeout:   30 * time.Second,
		MaxTokens: 1024,
		FallbackModels: []string{
			"claude-3-5-haiku-latest",
			"claude-3-5-sonnet-latest",
			"claude-3-opus-latest",
		},
	}
}
