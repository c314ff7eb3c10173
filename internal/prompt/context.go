// File: internal/prompt/context.go
package prompt

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// MaxContextChars caps the article text passed to the model. Headroom for a
// 16k context; could be tight for 8k.
const MaxContextChars = 25000

// maxContextTokens approximates the same budget when a tokenizer is
// available (25000 chars at roughly 4 chars per token).
const maxContextTokens = 6250

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

func encoding() *tiktoken.Tiktoken {
	encOnce.Do(func() {
		// Best effort: cl100k_base may be unavailable offline, in which case
		// the character cap below still bounds the context.
		enc, _ = tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
	})
	return enc
}

// ClampContext bounds article text to the model context budget, by token
// count when a tokenizer is available and by rune count otherwise.
func ClampContext(text string) string {
	text = strings.TrimSpace(text)
	if e := encoding(); e != nil {
		tokens := e.Encode(text, nil, nil)
		if len(tokens) <= maxContextTokens {
			return text
		}
		return e.Decode(tokens[:maxContextTokens])
	}
	return clampRunes(text)
}

// clampRunes cuts on a rune boundary so a multibyte character is never
// split into an invalid tail.
func clampRunes(text string) string {
	if len(text) <= MaxContextChars {
		return text
	}
	runes := []rune(text)
	if len(runes) <= MaxContextChars {
		return text
	}
	return string(runes[:MaxContextChars])
}
