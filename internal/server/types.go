package server

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role" example:"user"`
	Content string `json:"content" example:"Explain list comprehensions"`
}

// ChatRequest is the body of POST /chat. Either Message or Messages must be
// set; Messages wins when both are present.
type ChatRequest struct {
	Message  string        `json:"message,omitempty" example:"Hello"`
	Messages []ChatMessage `json:"messages,omitempty"`
	Model    string        `json:"model,omitempty" example:"llama3.2"`
}

// ChatResponse is the body of a successful POST /chat.
type ChatResponse struct {
	Response string `json:"response" example:"Hi! How can I help?"`
	Status   string `json:"status" example:"success"`
	Provider string `json:"provider,omitempty" example:"ollama"`
	Model    string `json:"model,omitempty" example:"llama3.2"`
}

// ExecuteRequest is the body of POST /execute. Model is accepted for
// compatibility with existing clients and ignored.
type ExecuteRequest struct {
	Code  *string `json:"code" example:"print('hello')"`
	Model string  `json:"model,omitempty"`
}

// ExecuteResponse is the body of POST /execute.
type ExecuteResponse struct {
	Output string `json:"output" example:"hello\n"`
	Status string `json:"status" example:"success"`
}

// ModelsResponse is the body of GET /models.
type ModelsResponse struct {
	Models   []string `json:"models"`
	Provider string   `json:"provider,omitempty" example:"ollama"`
}

// HealthResponse is the body of GET /health. OllamaAvailable reports whether
// the configured upstream answered a live probe, whichever provider it is.
type HealthResponse struct {
	Status          string            `json:"status" example:"healthy"`
	OllamaAvailable bool              `json:"ollama_available"`
	Provider        string            `json:"provider,omitempty" example:"ollama"`
	Build           map[string]string `json:"build,omitempty"`
}
