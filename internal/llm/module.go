// Package llm wires the configured upstream provider: it builds the provider
// selected by configuration, probes it at startup, and instruments every call.
package llm

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/HerbHall/notebookrelay/internal/llm/anthropic"
	"github.com/HerbHall/notebookrelay/internal/llm/gemini"
	"github.com/HerbHall/notebookrelay/internal/llm/ollama"
	"github.com/HerbHall/notebookrelay/internal/llm/openai"
	pkgllm "github.com/HerbHall/notebookrelay/pkg/llm"
	"go.uber.org/zap"
)

// Provider names accepted by ModuleConfig.Name.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// ModuleConfig holds the provider selection, generation defaults and
// per-provider sub-configs.
type ModuleConfig struct {
	Name          string           `mapstructure:"name"`
	ProbeTimeout  time.Duration    `mapstructure:"probe_timeout"`
	HealthTimeout time.Duration    `mapstructure:"health_timeout"`
	Temperature   float64          `mapstructure:"temperature"`
	TopP          float64          `mapstructure:"top_p"`
	ContextWindow int              `mapstructure:"context_window"`
	Ollama        ollama.Config    `mapstructure:"ollama"`
	OpenAI        openai.Config    `mapstructure:"openai"`
	Anthropic     anthropic.Config `mapstructure:"anthropic"`
	Gemini        gemini.Config    `mapstructure:"gemini"`
}

// DefaultModuleConfig returns the defaults for every provider.
func DefaultModuleConfig() ModuleConfig {
	return ModuleConfig{
		Name:          ProviderOllama,
		ProbeTimeout:  10 * time.Second,
		HealthTimeout: 5 * time.Second,
		Temperature:   pkgllm.DefaultTemperature,
		TopP:          pkgllm.DefaultTopP,
		ContextWindow: pkgllm.DefaultContextWindow,
		Ollama:        ollama.DefaultConfig(),
		OpenAI:        openai.DefaultConfig(),
		Anthropic:     anthropic.DefaultConfig(),
		Gemini:        gemini.DefaultConfig(),
	}
}

// CallOptions returns the generation settings every relayed call starts from.
func (c ModuleConfig) CallOptions() []pkgllm.CallOption {
	return []pkgllm.CallOption{
		pkgllm.WithTemperature(c.Temperature),
		pkgllm.WithTopP(c.TopP),
		pkgllm.WithContextWindow(c.ContextWindow),
	}
}

// Model returns the configured default model of the selected provider.
func (c ModuleConfig) Model() string {
	switch c.Name {
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderAnthropic:
		return c.Anthropic.Model
	case ProviderGemini:
		return c.Gemini.Model
	default:
		return c.Ollama.Model
	}
}

// FallbackModels returns the static model list reported when the selected
// provider cannot be queried.
func (c ModuleConfig) FallbackModels() []string {
	var models []string
	switch c.Name {
	case ProviderOpenAI:
		models = c.OpenAI.FallbackModels
	case ProviderAnthropic:
		models = c.Anthropic.FallbackModels
	case ProviderGemini:
		models = c.Gemini.FallbackModels
	default:
		models = c.Ollama.FallbackModels
	}
	out := make([]string, len(models))
	copy(out, models)
	return out
}

// New creates the provider named by cfg.Name without contacting it.
func New(ctx context.Context, cfg ModuleConfig, logger *zap.Logger) (pkgllm.Provider, error) {
	switch cfg.Name {
	case ProviderOllama, "":
		return ollama.New(cfg.Ollama, logger)
	case ProviderOpenAI:
		return openai.New(cfg.OpenAI, logger)
	case ProviderAnthropic:
		return anthropic.New(cfg.Anthropic, logger)
	case ProviderGemini:
		return gemini.New(ctx, cfg.Gemini, logger)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Name)
	}
}

// Connect builds the configured provider and probes it by listing models
// within cfg.ProbeTimeout. A probe failure is returned as an error so the
// caller can continue without a provider. A configured model missing from the
// listing only produces a warning.
func Connect(ctx context.Context, cfg ModuleConfig, logger *zap.Logger) (pkgllm.Provider, error) {
	p, err := New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", cfg.Name, err)
	}

	probeCtx := ctx
	if cfg.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, cfg.ProbeTimeout)
		defer cancel()
	}

	models, err := p.ListModels(probeCtx)
	if err != nil {
		if c, ok := p.(io.Closer); ok {
			c.Close() //nolint:errcheck
		}
		return nil, fmt.Errorf("probe %s provider: %w", p.Name(), err)
	}

	want := cfg.Model()
	if want != "" && !HasModel(models, want) {
		logger.Warn("configured model not found on provider; requests may fail until it is pulled",
			zap.String("provider", p.Name()),
			zap.String("model", want),
			zap.Strings("available", models),
		)
	}

	logger.Info("llm provider connected",
		zap.String("provider", p.Name()),
		zap.Int("models", len(models)),
	)
	return Instrument(p), nil
}

// HasModel reports whether want appears in models. A missing or explicit
// ":latest" tag is treated as the same model.
func HasModel(models []string, want string) bool {
	want = strings.TrimSuffix(want, ":latest")
	for _, m := range models {
		if strings.TrimSuffix(m, ":latest") == want {
			return true
		}
	}
	return false
}
