// File: internal/infra/llm/chat_format.go
package llm

import (
	"fmt"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/ports/adapter"
)

// completionParams is a two-message prompt flattened into a single completion
// string the way the model's chat template expects, plus the matching stop
// token. A simplification of the jinja chat templates shipped with
// Transformers; large models tolerate format drift well, and when in doubt
// chatml is the safe pick.
type completionParams struct {
	StopToken string
	Prompt    string
}

const defaultStopToken = "<|im_end|>"

// formatPrompt renders messages[0] as the system turn and messages[1] as the
// user turn. Unknown formats keep the raw messages and only supply the
// default stop token.
func formatPrompt(chatFormat string, messages []adapter.Message) (completionParams, bool) {
	var system, user string
	if len(messages) > 0 {
		system = messages[0].Content
	}
	if len(messages) > 1 {
		user = messages[1].Content
	}

	switch chatFormat {
	case "chatml":
		return completionParams{
			StopToken: defaultStopToken,
			Prompt: fmt.Sprintf("<|im_start|> system \n%s <|im_end|> \n<|im_start|> %s <|im_end|> \n<|im_start|> assistant\n",
				system, user),
		}, true
	case "llama-chat":
		return completionParams{
			StopToken: "</s>",
			Prompt: fmt.Sprintf("<s>[INST] <<SYS>>\n%s\n<</SYS>> \n\n%s[/INST]\n",
				system, user),
		}, true
	case "mistral-instruct":
		return completionParams{
			StopToken: "</s>",
			Prompt: fmt.Sprintf("<s>[INST] \n%s\n%s [/INST]\n",
				system, user),
		}, true
	default:
		return completionParams{StopToken: defaultStopToken}, false
	}
}
