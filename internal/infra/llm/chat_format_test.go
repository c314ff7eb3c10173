// File: internal/infra/llm/chat_format_test.go
package llm

import (
	"strings"
	"testing"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/ports/adapter"
)

func testMessages() []adapter.Message {
	return []adapter.Message{
		{Role: "system", Content: "SYS"},
		{Role: "user", Content: "USR"},
	}
}

func TestFormatPrompt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		format    string
		stop      string
		fragments []string
	}{
		{"chatml", "<|im_end|>", []string{"<|im_start|>", "SYS", "USR"}},
		{"llama-chat", "</s>", []string{"[INST]", "<<SYS>>", "SYS", "USR"}},
		{"mistral-instruct", "</s>", []string{"[INST]", "SYS", "USR"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.format, func(t *testing.T) {
			t.Parallel()
			params, ok := formatPrompt(tc.format, testMessages())
			if !ok {
				t.Fatalf("expected %s to be templated", tc.format)
			}
			if params.StopToken != tc.stop {
				t.Fatalf("stop token = %q, want %q", params.StopToken, tc.stop)
			}
			for _, frag := range tc.fragments {
				if !strings.Contains(params.Prompt, frag) {
					t.Fatalf("prompt missing %q: %q", frag, params.Prompt)
				}
			}
		})
	}
}

func TestFormatPrompt_UnknownFormat(t *testing.T) {
	t.Parallel()

	params, ok := formatPrompt("alpaca", testMessages())
	if ok {
		t.Fatalf("unknown formats must not claim templating")
	}
	if params.StopToken != defaultStopToken {
		t.Fatalf("unknown formats keep the default stop token, got %q", params.StopToken)
	}
}
