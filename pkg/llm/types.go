package llm

import "strings"

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"` // One of RoleSystem, RoleUser, RoleAssistant by convention.
	Content string `json:"content"`
}

// Role constants for the Message.Role field.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Response contains the generated text and metadata.
type Response struct {
	Content string `json:"content"` // Generated text.
	Model   string `json:"model"`   // Model that produced this response.
	Usage   Usage  `json:"usage"`   // Token consumption stats.
	Done    bool   `json:"done"`    // True if generation completed (false if truncated).
}

// Usage tracks token consumption for a single upstream call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Prompt flattens a conversation into a single prompt for upstreams that
// accept one prompt string. A lone user message is passed through verbatim.
func Prompt(messages []Message) string {
	if len(messages) == 1 && (messages[0].Role == RoleUser || messages[0].Role == "") {
		return messages[0].Content
	}

	var b strings.Builder
	for _, m := range messages {
		role := m.Role
		if role == "" {
			role = RoleUser
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString(RoleAssistant + ":")
	return b.String()
}
