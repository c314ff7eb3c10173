// File: internal/infra/llm/router.go
package llm

import (
	"context"
	"fmt"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/ports/adapter"
)

// Backend tags accepted from the job trigger.
const (
	BackendOpenAI   = "openai"
	BackendLlamaCpp = "llama_cpp_server"
)

var _ adapter.CompletionAdapter = (*Router)(nil)

// Router dispatches each completion to the backend selected at job launch.
// An unknown tag yields an error-shaped result like any other backend
// failure.
type Router struct {
	backend string
	hosted  adapter.CompletionAdapter
	local   adapter.CompletionAdapter
}

func NewRouter(backend string, hosted, local adapter.CompletionAdapter) *Router {
	return &Router{backend: backend, hosted: hosted, local: local}
}

func (r *Router) Complete(ctx context.Context, req adapter.CompletionRequest) adapter.CompletionResult {
	switch r.backend {
	case BackendOpenAI:
		return r.hosted.Complete(ctx, req)
	case BackendLlamaCpp:
		return r.local.Complete(ctx, req)
	default:
		msg := fmt.Sprintf("invalid client type %q", r.backend)
		return adapter.CompletionResult{Err: msg, Model: msg}
	}
}
