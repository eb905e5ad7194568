package openai

import "time"

// Config holds the OpenAI provider configuration. BaseURL may point at any
// OpenAI-compatible endpoint (vLLM, LM Studio, Groq, ...).
type Config struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	Timeout        time.Duration `mapstructure:"timeout"`
	FallbackModels []string      `mapstructure:"fallback_models"`
}

// DefaultConfig returns sensible defaults for OpenAI.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "https://api.openai.com/v1",
		Model:          "gpt-3.5-turbo",
		Timeout:        30 * time.Second,
		FallbackModels: []string{"gpt-3.5-turbo", "gpt-4", "gpt-4-turbo-preview"},
	}
}
