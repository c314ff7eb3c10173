package adapter

import "context"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// CompletionRequest carries one two-message prompt plus the decoding
// constraints a backend may honor. Grammar and ChatFormat are ignored by
// backends that do not support them.
type CompletionRequest struct {
	Messages   []Message
	Model      string
	Grammar    string // GBNF description of the expected object shape
	ChatFormat string // chatml | llama-chat | mistral-instruct
}

// CompletionResult is deliberately error-shaped rather than (string, error):
// transport, auth and rate-limit failures travel as values so the pipeline
// can treat them exactly like content-bearing results and branch on Err.
type CompletionResult struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Err     string `json:"model - error,omitempty"`
}

// Failed reports whether the backend produced an error-shaped result.
func (r CompletionResult) Failed() bool { return r.Err != "" }

// CompletionAdapter is the port for a single constrained completion call.
type CompletionAdapter interface {
	Complete(ctx context.Context, req CompletionRequest) CompletionResult
}
