package gemini

import "time"

// Config holds the Gemini provider configuration.
type Config struct {
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	Timeout        time.Duration `mapstructure:"timeout"`
	FallbackModels []string      `mapstructure:"fallback_models"`
}

// DefaultConfig returns sensible defaults for Gemini.
func DefaultConfig() Config {
	return Config{
		Model:          "gemini-1.5-flash",
		Timeout:        30 * time.Second,
		FallbackModels: []string{"gemini-1.5-flash", "gemini-1.5-pro", "gemini-2.0-flash"},
	}
}
