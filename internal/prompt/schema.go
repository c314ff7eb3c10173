// File: internal/prompt/schema.go
package prompt

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema selects the output contract of a completion call. The prompt text,
// the GBNF grammar and the validation document are all looked up through the
// same value, so a mismatched pairing cannot be expressed.
type Schema string

const (
	// SchemaLong extracts full metadata plus both summaries, for documents
	// where scraping produced nothing structured.
	SchemaLong Schema = "long"
	// SchemaShort fills the gaps left after a successful structured scrape:
	// slug, categories, countries and a short summary.
	SchemaShort Schema = "short"
)

// LongOutput is the wire shape of a SchemaLong completion.
type LongOutput struct {
	Metadata struct {
		Authors       []string `json:"authors"`
		Title         string   `json:"title"`
		Slug          string   `json:"slug"`
		Categories    []string `json:"categories"`
		Countries     []string `json:"countries"`
		DatePublished string   `json:"date_published"`
	} `json:"metadata"`
	Summaries struct {
		ShortSummary string `json:"short_summary"`
		LongSummary  string `json:"long_summary"`
	} `json:"summaries"`
}

// ShortOutput is the wire shape of a SchemaShort completion.
type ShortOutput struct {
	Metadata struct {
		Slug       string   `json:"slug"`
		Categories []string `json:"categories"`
		Countries  []string `json:"countries"`
	} `json:"metadata"`
	ShortSummary string `json:"short_summary"`
}

// Validation documents. Only the top-level shape is enforced: inner fields
// may be absent (readers default them), but a response that is valid JSON of
// the wrong overall structure must fail here so it gets one healing attempt.
const longSchemaDoc = `{
  "type": "object",
  "required": ["metadata", "summaries"],
  "properties": {
    "metadata": {"type": "object"},
    "summaries": {"type": "object"}
  }
}`

const shortSchemaDoc = `{
  "type": "object",
  "required": ["metadata", "short_summary"],
  "properties": {
    "metadata": {"type": "object"},
    "short_summary": {"type": "string"}
  }
}`

var (
	longSchema  = jsonschema.MustCompileString("long.json", longSchemaDoc)
	shortSchema = jsonschema.MustCompileString("short.json", shortSchemaDoc)
)

func (s Schema) validator() *jsonschema.Schema {
	if s == SchemaShort {
		return shortSchema
	}
	return longSchema
}

// Validate checks decoded JSON against the schema's top-level shape.
func (s Schema) Validate(v any) error {
	return s.validator().Validate(v)
}

// DecodeLong parses completion text into a LongOutput. The returned error is
// either a JSON syntax error or a jsonschema validation error; callers decide
// whether to heal based on which stage failed, both are healable.
func DecodeLong(content string) (*LongOutput, error) {
	var probe any
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &probe); err != nil {
		return nil, err
	}
	if err := SchemaLong.Validate(probe); err != nil {
		return nil, err
	}
	var out LongOutput
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DecodeShort parses completion text into a ShortOutput.
func DecodeShort(content string) (*ShortOutput, error) {
	var probe any
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &probe); err != nil {
		return nil, err
	}
	if err := SchemaShort.Validate(probe); err != nil {
		return nil, err
	}
	var out ShortOutput
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
