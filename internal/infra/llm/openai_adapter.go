// File: internal/infra/llm/openai_adapter.go
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

// Compile-time assurance this adapter satisfies the port
var _ adapter.CompletionAdapter = (*OpenAIAdapter)(nil)

// Fixed sampling shared by both backends.
const (
	samplingTemperature = 0.8
	samplingTopP        = 0.95
	maxGeneratedTokens  = 2000
)

// OpenAIAdapter calls an OpenAI-compatible chat completions endpoint in
// JSON-object output mode. Only models that support response_format
// json_object are usable here (gpt-3.5-turbo-1106 and later).
type OpenAIAdapter struct {
	apiKey string
	base   string // e.g. https://api.openai.com/v1
	model  string
	client *http.Client
}

func NewOpenAIAdapter(base, apiKey, model string, timeout time.Duration) *OpenAIAdapter {
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-3.5-turbo-1106"
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &OpenAIAdapter{
		apiKey: apiKey,
		base:   strings.TrimSuffix(base, "/"),
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

// Complete never returns a Go error: any transport or decoding failure is
// folded into an error-shaped result so the pipeline handles both outcomes
// through one path.
func (o *OpenAIAdapter) Complete(ctx context.Context, req adapter.CompletionRequest) adapter.CompletionResult {
	model := req.Model
	if model == "" {
		model = o.model
	}

	body := struct {
		Model            string            `json:"model"`
		Messages         []adapter.Message `json:"messages"`
		Temperature      float64           `json:"temperature"`
		MaxTokens        int               `json:"max_tokens"`
		TopP             float64           `json:"top_p"`
		FrequencyPenalty float64           `json:"frequency_penalty"`
		PresencePenalty  float64           `json:"presence_penalty"`
		ResponseFormat   struct {
			Type string `json:"type"`
		} `json:"response_format"`
		Stop *string `json:"stop"`
	}{
		Model:            model,
		Messages:         req.Messages,
		Temperature:      samplingTemperature,
		MaxTokens:        maxGeneratedTokens,
		TopP:             samplingTopP,
		FrequencyPenalty: 0.0,
		PresencePenalty:  0.0,
	}
	body.ResponseFormat.Type = "json_object"

	b, _ := json.Marshal(body)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.base+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return errorResult(err.Error(), model)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return errorResult(err.Error(), model)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errorResult(fmt.Sprintf("openai http %d", resp.StatusCode), model)
	}

	var payload struct {
		Model   string `json:"model"`
		Choices []struct {
			Message adapter.Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return errorResult(err.Error(), model)
	}
	if len(payload.Choices) == 0 {
		return errorResult("no choice content", model)
	}

	served := strings.TrimSpace(payload.Model)
	if served == "" {
		served = model
	}
	return adapter.CompletionResult{
		Content: strings.TrimSpace(payload.Choices[0].Message.Content),
		Model:   served,
	}
}

func errorResult(msg, model string) adapter.CompletionResult {
	return adapter.CompletionResult{Err: msg, Model: model}
}
