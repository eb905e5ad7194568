package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/HerbHall/notebookrelay/pkg/llm"
	"go.uber.org/zap"
)

const providerName = "openai"

// Compile-time interface guard.
var _ llm.Provider = (*Provider)(nil)

// Provider implements llm.Provider for OpenAI-compatible chat completion APIs.
type Provider struct {
	client *llm.RESTClient
	cfg    Config
	logger *zap.Logger
}

// New creates an OpenAI provider. The API key comes from configuration and is
// never accepted from relay clients.
func New(cfg Config, logger *zap.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	base := cfg.BaseURL
	if strings.TrimSpace(base) == "" {
		base = DefaultConfig().BaseURL
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+cfg.APIKey)

	return &Provider{
		client: llm.NewRESTClient(providerName, base, cfg.Timeout, header),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return providerName }

// Chat sends the conversation to /chat/completions and returns the first choice.
func (p *Provider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.Response, error) {
	if len(messages) == 0 {
		return nil, llm.NewProviderError(llm.ErrCodeInvalidRequest, "messages must not be empty", nil)
	}

	call := llm.ApplyOptions(opts...)
	model := call.Model
	if model == "" {
		model = p.cfg.Model
	}

	req := chatRequest{
		Model:       model,
		Messages:    make([]chatMessage, len(messages)),
		Temperature: call.Temperature,
		TopP:        call.TopP,
		MaxTokens:   call.MaxTokens,
	}
	for i, m := range messages {
		req.Messages[i] = chatMessage{Role: m.Role, Content: m.Content}
	}

	var resp chatResponse
	if err := p.client.Do(ctx, http.MethodPost, "/chat/completions", req, &resp); err != nil {
		return nil, mapError(err)
	}

	text := resp.text()
	if strings.TrimSpace(text) == "" {
		p.logger.Warn("openai returned an empty completion", zap.String("model", model))
		return nil, llm.ErrEmptyCompletion(providerName)
	}

	out := &llm.Response{
		Content: text,
		Model:   model,
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Done: resp.finishReason() != "length",
	}
	if resp.Model != "" {
		out.Model = resp.Model
	}
	return out, nil
}

// Heartbeat checks that the API answers and accepts the key.
func (p *Provider) Heartbeat(ctx context.Context) error {
	return mapError(p.client.Do(ctx, http.MethodGet, "/models", nil, nil))
}

// ListModels returns the model IDs visible to the configured key.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	var list listResponse
	if err := p.client.Do(ctx, http.MethodGet, "/models", nil, &list); err != nil {
		return nil, mapError(err)
	}
	ids := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (r *chatResponse) text() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

func (r *chatResponse) finishReason() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].FinishReason
}

type listResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}
