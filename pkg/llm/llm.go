// Package llm provides the public SDK types for upstream inference providers.
// Every backend the relay can forward chat requests to (Ollama, OpenAI,
// Anthropic, Gemini) implements Provider. Implementations live in
// internal/llm/{provider}/ adapters.
package llm

import "context"

// Provider is the core interface implemented by all upstream inference backends.
// The HTTP layer depends only on this interface.
type Provider interface {
	// Name returns the stable identifier of the backend ("ollama", "openai", ...).
	Name() string

	// Chat creates a completion from a conversation history.
	// Use CallOption values to override model or generation parameters.
	// An empty completion is reported as an ErrCodeEmptyCompletion error.
	Chat(ctx context.Context, messages []Message, opts ...CallOption) (*Response, error)

	HealthReporter
}

// HealthReporter reports connection health and model availability.
type HealthReporter interface {
	// Heartbeat checks whether the upstream service is reachable.
	Heartbeat(ctx context.Context) error

	// ListModels returns the names of models available from this provider.
	ListModels(ctx context.Context) ([]string, error)
}

// CallOption configures a single Chat call.
type CallOption func(*CallConfig)

// CallConfig holds the resolved configuration for a single upstream call.
// Users interact through CallOption functions, not this struct directly.
type CallConfig struct {
	Model         string
	Temperature   float64
	TopP          float64
	ContextWindow int
	MaxTokens     int
}

// Generation defaults applied when no option overrides them.
const (
	DefaultTemperature   = 0.7
	DefaultTopP          = 0.95
	DefaultContextWindow = 2048
)

// WithModel sets the model to use for this call, overriding the provider default.
func WithModel(model string) CallOption {
	return func(c *CallConfig) { c.Model = model }
}

// WithTemperature sets the sampling temperature.
// 0.0 = deterministic, 1.0+ = creative.
func WithTemperature(temp float64) CallOption {
	return func(c *CallConfig) { c.Temperature = temp }
}

// WithTopP sets nucleus sampling probability mass. Anthropic accepts only one
// of temperature and top_p, so that provider sends temperature alone.
func WithTopP(p float64) CallOption {
	return func(c *CallConfig) { c.TopP = p }
}

// WithContextWindow sets the context window size in tokens. Only providers
// that expose the setting (Ollama's num_ctx) honor it.
func WithContextWindow(tokens int) CallOption {
	return func(c *CallConfig) { c.ContextWindow = tokens }
}

// WithMaxTokens sets the maximum number of tokens to generate.
// Zero leaves the provider default in place.
func WithMaxTokens(max int) CallOption {
	return func(c *CallConfig) { c.MaxTokens = max }
}

// ApplyOptions creates a CallConfig from a list of options, starting from defaults.
func ApplyOptions(opts ...CallOption) CallConfig {
	cfg := CallConfig{
		Temperature:   DefaultTemperature,
		TopP:          DefaultTopP,
		ContextWindow: DefaultContextWindow,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
