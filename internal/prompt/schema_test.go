// File: internal/prompt/schema_test.go
package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDecodeLong(t *testing.T) {
	t.Parallel()

	valid := `{"metadata":{"authors":["A"],"title":"T","slug":"t","categories":[],"countries":[],"date_published":"2024/05/14"},"summaries":{"short_summary":"s","long_summary":"l"}}`
	out, err := DecodeLong(valid)
	if err != nil {
		t.Fatalf("DecodeLong returned error: %v", err)
	}
	if out.Metadata.Title != "T" || out.Summaries.LongSummary != "l" {
		t.Fatalf("unexpected decode %+v", out)
	}
}

func TestDecodeLong_MissingInnerFieldsAreTolerated(t *testing.T) {
	t.Parallel()

	// only the top-level shape is enforced; absent inner keys default
	out, err := DecodeLong(`{"metadata":{},"summaries":{}}`)
	if err != nil {
		t.Fatalf("DecodeLong returned error: %v", err)
	}
	if out.Metadata.Title != "" || len(out.Metadata.Authors) != 0 {
		t.Fatalf("expected zero values, got %+v", out)
	}
}

func TestDecodeLong_Invalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
	}{
		{"syntax error", `{"metadata": {`},
		{"not an object", `"just a string"`},
		{"wrong shape", `{"metadata":{}}`},
		{"summaries wrong type", `{"metadata":{},"summaries":"nope"}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := DecodeLong(tc.in); err == nil {
				t.Fatalf("expected error for %q", tc.in)
			}
		})
	}
}

func TestDecodeShort(t *testing.T) {
	t.Parallel()

	valid := `{"metadata":{"slug":"s","categories":["c"],"countries":[]},"short_summary":"sum"}`
	out, err := DecodeShort(valid)
	if err != nil {
		t.Fatalf("DecodeShort returned error: %v", err)
	}
	if out.Metadata.Slug != "s" || out.ShortSummary != "sum" {
		t.Fatalf("unexpected decode %+v", out)
	}

	if _, err := DecodeShort(`{"metadata":{}}`); err == nil {
		t.Fatalf("expected error for missing short_summary")
	}
}

func TestSchemaGrammarPairing(t *testing.T) {
	t.Parallel()

	long := SchemaLong.Grammar()
	short := SchemaShort.Grammar()
	if long == "" || short == "" {
		t.Fatalf("grammars must not be empty")
	}
	if long == short {
		t.Fatalf("long and short grammars must differ")
	}
	if !strings.Contains(long, "long_summary") {
		t.Fatalf("long grammar must constrain long_summary")
	}
	if strings.Contains(short, "long_summary") {
		t.Fatalf("short grammar must not mention long_summary")
	}
}

func TestBuildExtractionPairsSchemaAndPrompt(t *testing.T) {
	t.Parallel()

	long := BuildExtraction(SchemaLong, "article text")
	if len(long) != 2 || long[0].Role != "system" || long[1].Role != "user" {
		t.Fatalf("unexpected message shape %+v", long)
	}
	if !strings.Contains(long[0].Content, "long summary") {
		t.Fatalf("long prompt must ask for both summaries")
	}
	if !strings.Contains(long[1].Content, "article text") {
		t.Fatalf("user turn must carry the article")
	}

	short := BuildExtraction(SchemaShort, "abstract text")
	if strings.Contains(short[0].Content, "long_summary") {
		t.Fatalf("short prompt must not ask for a long summary")
	}
}

func TestBuildRepairQuotesMalformedOutput(t *testing.T) {
	t.Parallel()

	msgs := BuildRepair(SchemaLong, `{"broken": `)
	if len(msgs) != 2 {
		t.Fatalf("unexpected message count %d", len(msgs))
	}
	if !strings.Contains(msgs[0].Content, `{"broken": `) {
		t.Fatalf("repair system turn must quote the malformed response")
	}
	if !strings.Contains(msgs[0].Content, "date_published") {
		t.Fatalf("repair system turn must restate the expected format")
	}
}

func TestClampContext(t *testing.T) {
	t.Parallel()

	short := "small text"
	if got := ClampContext("  " + short + "  "); got != short {
		t.Fatalf("expected trimmed passthrough, got %q", got)
	}

	huge := strings.Repeat("word ", 40000)
	clamped := ClampContext(huge)
	if len(clamped) >= len(huge) {
		t.Fatalf("expected clamping, got %d chars", len(clamped))
	}
}

func TestClampRunes_KeepsUTF8Intact(t *testing.T) {
	t.Parallel()

	multibyte := strings.Repeat("é", MaxContextChars+100)
	clamped := clampRunes(multibyte)
	if !utf8.ValidString(clamped) {
		t.Fatalf("clamped text is not valid UTF-8")
	}
	if got := utf8.RuneCountInString(clamped); got != MaxContextChars {
		t.Fatalf("expected %d runes, got %d", MaxContextChars, got)
	}

	ascii := strings.Repeat("a", MaxContextChars)
	if got := clampRunes(ascii); got != ascii {
		t.Fatalf("text at the limit must pass through unchanged")
	}
}
