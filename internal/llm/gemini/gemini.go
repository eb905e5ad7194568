package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HerbHall/notebookrelay/pkg/llm"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Compile-time interface guard.
var _ llm.Provider = (*Provider)(nil)

// Provider implements llm.Provider on top of the Gemini client library.
type Provider struct {
	client *genai.Client
	cfg    Config
	logger *zap.Logger
}

// New creates a Gemini provider. Extra client options (endpoint, HTTP client)
// are passed through to the underlying client.
func New(ctx context.Context, cfg Config, logger *zap.Logger, opts ...option.ClientOption) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Provider{client: client, cfg: cfg, logger: logger}, nil
}

// Name implements llm.Provider.
func (p *Provider) Name() string { return "gemini" }

// Close releases the underlying client connection.
func (p *Provider) Close() error { return p.client.Close() }

// Chat replays the conversation as chat history and sends the final turn.
func (p *Provider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.Response, error) {
	if len(messages) == 0 {
		return nil, llm.NewProviderError(llm.ErrCodeInvalidRequest, "messages must not be empty", nil)
	}

	cfg := llm.ApplyOptions(opts...)

	name := cfg.Model
	if name == "" {
		name = p.cfg.Model
	}

	system, history := toContents(messages)
	if len(history) == 0 {
		return nil, llm.NewProviderError(llm.ErrCodeInvalidRequest, "at least one non-system message is required", nil)
	}

	model := p.client.GenerativeModel(name)
	model.SetTemperature(float32(cfg.Temperature))
	model.SetTopP(float32(cfg.TopP))
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}
	if system != nil {
		model.SystemInstruction = system
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	last := history[len(history)-1]
	cs := model.StartChat()
	cs.History = history[:len(history)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, mapError(err)
	}

	content := extractText(resp)
	if strings.TrimSpace(content) == "" {
		p.logger.Warn("gemini returned an empty completion", zap.String("model", name))
		return nil, llm.ErrEmptyCompletion("gemini")
	}

	out := &llm.Response{Content: content, Model: name, Done: true}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = llm.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		out.Done = false
	}
	return out, nil
}

// Heartbeat checks that the model listing endpoint answers.
func (p *Provider) Heartbeat(ctx context.Context) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	it := p.client.ListModels(ctx)
	if _, err := it.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return mapError(err)
	}
	return nil
}

// ListModels returns the model names without their "models/" prefix.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	var names []string
	it := p.client.ListModels(ctx)
	for {
		m, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, mapError(err)
		}
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}

func (p *Provider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.cfg.Timeout)
}

// toContents converts relay messages into Gemini contents. System messages
// become a single system instruction; assistant turns use the "model" role.
func toContents(messages []llm.Message) (*genai.Content, []*genai.Content) {
	var system []genai.Part
	history := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			system = append(system, genai.Text(m.Content))
		case llm.RoleAssistant:
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(m.Content)}})
		default:
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}
	if len(system) == 0 {
		return nil, history
	}
	return &genai.Content{Parts: system}, history
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
