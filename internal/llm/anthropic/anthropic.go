package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/HerbHall/notebookrelay/pkg/llm"
	"go.uber.org/zap"
)

const (
	providerName = "anthropic"
	apiVersion   = "2023-06-01"
)

// Compile-time interface guard.
var _ llm.Provider = (*Provider)(nil)

// Provider implements llm.Provider for Anthropic using its Messages API.
type Provider struct {
	client *llm.RESTClient
	cfg    Config
	logger *zap.Logger
}

// New creates an Anthropic provider.
func New(cfg Config, logger *zap.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	base := cfg.BaseURL
	if strings.TrimSpace(base) == "" {
		base = DefaultConfig().BaseURL
	}

	header := http.Header{}
	header.Set("x-api-key", cfg.APIKey)
	header.Set("anthropic-version", apiVersion)

	return &Provider{
		client: llm.NewRESTClient(providerName, base, cfg.Timeout, header),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return providerName }

// Chat creates a completion from a conversation history. System messages
// are joined into the request's top-level system prompt.
func (p *Provider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.Response, error) {
	if len(messages) == 0 {
		return nil, llm.NewProviderError(llm.ErrCodeInvalidRequest, "messages must not be empty", nil)
	}

	call := llm.ApplyOptions(opts...)
	system, turns := splitSystem(messages)
	if len(turns) == 0 {
		return nil, llm.NewProviderError(llm.ErrCodeInvalidRequest, "at least one non-system message is required", nil)
	}

	req := messagesRequest{
		Model:       firstNonEmpty(call.Model, p.cfg.Model),
		System:      system,
		Messages:    turns,
		MaxTokens:   p.maxTokens(call.MaxTokens),
		Temperature: call.Temperature,
	}

	var resp messagesResponse
	if err := p.client.Do(ctx, http.MethodPost, "/v1/messages", req, &resp); err != nil {
		return nil, mapError(err)
	}

	text := resp.text()
	if strings.TrimSpace(text) == "" {
		p.logger.Warn("anthropic returned an empty completion", zap.String("model", req.Model))
		return nil, llm.ErrEmptyCompletion(providerName)
	}

	return &llm.Response{
		Content: text,
		Model:   firstNonEmpty(resp.Model, req.Model),
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
		Done: resp.StopReason != "max_tokens",
	}, nil
}

// Heartbeat checks whether the Anthropic API is reachable by listing models.
func (p *Provider) Heartbeat(ctx context.Context) error {
	return mapError(p.client.Do(ctx, http.MethodGet, "/v1/models", nil, nil))
}

// ListModels returns the model IDs visible to the configured key.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	var list listResponse
	if err := p.client.Do(ctx, http.MethodGet, "/v1/models", nil, &list); err != nil {
		return nil, mapError(err)
	}
	ids := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// maxTokens resolves the required max_tokens field: call option, then
// configuration, then the package default.
func (p *Provider) maxTokens(requested int) int {
	switch {
	case requested > 0:
		return requested
	case p.cfg.MaxTokens > 0:
		return p.cfg.MaxTokens
	default:
		return DefaultConfig().MaxTokens
	}
}

// splitSystem separates system messages from the conversation turns.
// Messages with an empty role are sent as user turns.
func splitSystem(messages []llm.Message) (string, []chatMessage) {
	var system []string
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			system = append(system, m.Content)
		case "":
			out = append(out, chatMessage{Role: llm.RoleUser, Content: m.Content})
		default:
			out = append(out, chatMessage{Role: m.Role, Content: m.Content})
		}
	}
	return strings.Join(system, "\n\n"), out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

type messagesRequest struct {
	Model       string        `json:"model"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type listResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (r *messagesResponse) text() string {
	var sb strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}
