// File: internal/infra/llm/llamacpp_adapter.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/ports/adapter"
)

var _ adapter.CompletionAdapter = (*LlamaCppAdapter)(nil)

const llamaCppModelLabel = "llama.cpp server"

// LlamaCppAdapter posts grammar-constrained completions to a local llama.cpp
// server. The model is whatever the server was launched with; req.Model is
// ignored. A model able to process at least 16k tokens is recommended.
type LlamaCppAdapter struct {
	base   string // e.g. http://127.0.0.1:8080
	client *http.Client
}

func NewLlamaCppAdapter(base string, timeout time.Duration) *LlamaCppAdapter {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &LlamaCppAdapter{
		base:   strings.TrimSuffix(base, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

func (l *LlamaCppAdapter) Complete(ctx context.Context, req adapter.CompletionRequest) adapter.CompletionResult {
	params, templated := formatPrompt(req.ChatFormat, req.Messages)

	body := map[string]any{
		"temperature":       samplingTemperature,
		"top_p":             samplingTopP,
		"frequency_penalty": 0.0,
		"presence_penalty":  0.0,
		"n_predict":         maxGeneratedTokens,
		"stop":              []string{params.StopToken},
		"grammar":           req.Grammar,
	}
	if templated {
		body["prompt"] = params.Prompt
	} else {
		body["prompt"] = req.Messages
	}

	b, _ := json.Marshal(body)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.base+"/completion", bytes.NewReader(b))
	if err != nil {
		return errorResult(err.Error(), llamaCppModelLabel)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return errorResult(err.Error(), llamaCppModelLabel)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errorResult(fmt.Sprintf("llama.cpp http %d", resp.StatusCode), llamaCppModelLabel)
	}

	var payload struct {
		Content            string `json:"content"`
		GenerationSettings struct {
			Model string `json:"model"`
		} `json:"generation_settings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return errorResult(err.Error(), llamaCppModelLabel)
	}

	model := strings.TrimSpace(payload.GenerationSettings.Model)
	if model == "" {
		model = llamaCppModelLabel
	}
	return adapter.CompletionResult{
		Content: strings.TrimSpace(payload.Content),
		Model:   model,
	}
}
