package ollama

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/HerbHall/notebookrelay/pkg/llm"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// Compile-time interface guard.
var _ llm.Provider = (*Provider)(nil)

// Provider implements llm.Provider for a local Ollama server. Chat requests
// are sent as a single prompt to /api/generate; the server is unauthenticated.
type Provider struct {
	client *api.Client
	base   *url.URL
	cfg    Config
	logger *zap.Logger
}

// New creates an Ollama provider. It does not verify connectivity;
// internal/llm.Connect probes the server after construction.
func New(cfg Config, logger *zap.Logger) (*Provider, error) {
	base, err := cfg.ResolveURL()
	if err != nil {
		return nil, err
	}

	return &Provider{
		client: api.NewClient(base, &http.Client{}),
		base:   base,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return "ollama" }

// BaseURL returns the resolved server address.
func (p *Provider) BaseURL() string { return p.base.String() }

// Chat flattens the conversation into one prompt and runs a non-streaming generate.
func (p *Provider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.Response, error) {
	if len(messages) == 0 {
		return nil, llm.NewProviderError(llm.ErrCodeInvalidRequest, "messages must not be empty", nil)
	}

	cfg := llm.ApplyOptions(opts...)

	model := cfg.Model
	if model == "" {
		model = p.cfg.Model
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	noStream := false
	req := &api.GenerateRequest{
		Model:   model,
		Prompt:  llm.Prompt(messages),
		Stream:  &noStream,
		Options: buildOptions(cfg),
	}

	var content strings.Builder
	var metrics api.Metrics
	var done bool

	err := p.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		content.WriteString(resp.Response)
		if resp.Done {
			metrics = resp.Metrics
			done = true
		}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}

	if strings.TrimSpace(content.String()) == "" {
		p.logger.Warn("ollama returned an empty completion", zap.String("model", model))
		return nil, llm.ErrEmptyCompletion("ollama")
	}

	return &llm.Response{
		Content: content.String(),
		Model:   model,
		Usage: llm.Usage{
			PromptTokens:     metrics.PromptEvalCount,
			CompletionTokens: metrics.EvalCount,
			TotalTokens:      metrics.PromptEvalCount + metrics.EvalCount,
		},
		Done: done,
	}, nil
}

// Heartbeat checks whether the Ollama server is reachable.
func (p *Provider) Heartbeat(ctx context.Context) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	return mapError(p.client.Heartbeat(ctx))
}

// ListModels returns the names of locally installed models.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	resp, err := p.client.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	names := make([]string, len(resp.Models))
	for i := range resp.Models {
		names[i] = resp.Models[i].Name
	}
	return names, nil
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.cfg.Timeout)
}

// buildOptions converts CallConfig fields into Ollama's Options map.
func buildOptions(cfg llm.CallConfig) map[string]any {
	opts := make(map[string]any)
	if cfg.Temperature > 0 {
		opts["temperature"] = cfg.Temperature
	}
	if cfg.TopP > 0 {
		opts["top_p"] = cfg.TopP
	}
	if cfg.ContextWindow > 0 {
		opts["num_ctx"] = cfg.ContextWindow
	}
	if cfg.MaxTokens > 0 {
		opts["num_predict"] = cfg.MaxTokens
	}
	return opts
}
