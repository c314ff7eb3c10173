// File: internal/usecase/interpret.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/model"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/ports/adapter"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/infra/metrics"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/prompt"
)

// llmCall bundles the completion client with the per-job decoding options.
type llmCall struct {
	client     adapter.CompletionAdapter
	backend    string
	model      string
	chatFormat string
}

func (u *ingestUC) invoke(ctx context.Context, call llmCall, s prompt.Schema, msgs []adapter.Message) adapter.CompletionResult {
	start := time.Now()
	res := call.client.Complete(ctx, adapter.CompletionRequest{
		Messages:   msgs,
		Model:      call.model,
		Grammar:    s.Grammar(),
		ChatFormat: call.chatFormat,
	})
	metrics.ObserveCompletion(call.backend, !res.Failed(), time.Since(start).Seconds())
	return res
}

// extract drives one completion sequence against the draft: first call,
// decode, and at most one repair round-trip when the output does not match
// the schema. A backend failure (error-shaped result) is permanent and never
// healed; healing only makes sense when there is malformed text to fix.
// Returns whether the draft was filled from a valid response.
func (u *ingestUC) extract(ctx context.Context, job *jobRun, category model.Category, s prompt.Schema, input string, draft *model.Draft, plog *model.AttemptLog) bool {
	input = prompt.ClampContext(input)

	u.report(ctx, job, category, draft.URL, stepAwaitingLLM)
	res := u.invoke(ctx, job.call, s, prompt.BuildExtraction(s, input))
	plog.Turns = 1
	plog.Model = res.Model
	draft.ModelUsed = res.Model

	if res.Failed() {
		plog.Output = res.Err
		plog.Success = false
		u.applyBackendFailure(s, draft, res)
		return false
	}

	u.report(ctx, job, category, draft.URL, stepLLMReceived)
	plog.Output = res.Content
	if u.applyOutput(s, draft, res.Content) {
		plog.Success = true
		return true
	}

	u.report(ctx, job, category, draft.URL, stepHealing)
	repaired := u.invoke(ctx, job.call, s, prompt.BuildRepair(s, res.Content))
	plog.Turns = 2
	plog.Model = repaired.Model
	draft.ModelUsed = repaired.Model

	if repaired.Failed() {
		plog.Output = repaired.Err
		plog.Success = false
		metrics.ObserveHealing("failed")
		u.applyBackendFailure(s, draft, repaired)
		return false
	}

	plog.Output = repaired.Content
	if u.applyOutput(s, draft, repaired.Content) {
		plog.Success = true
		metrics.ObserveHealing("healed")
		return true
	}

	u.report(ctx, job, category, draft.URL, stepSecondInvalid)
	plog.Success = false
	metrics.ObserveHealing("failed")
	u.applyJSONFailure(s, draft)
	return false
}

// applyOutput decodes the completion text per schema and merges the fields
// into the draft. False means the text needs healing.
func (u *ingestUC) applyOutput(s prompt.Schema, draft *model.Draft, content string) bool {
	switch s {
	case prompt.SchemaShort:
		out, err := prompt.DecodeShort(content)
		if err != nil {
			return false
		}
		draft.Slug = out.Metadata.Slug
		draft.Categories = mergeValues(draft.Categories, out.Metadata.Categories)
		draft.Countries = out.Metadata.Countries
		draft.Overview = out.ShortSummary
		return true
	default:
		out, err := prompt.DecodeLong(content)
		if err != nil {
			return false
		}
		draft.Authors = out.Metadata.Authors
		draft.Title = out.Metadata.Title
		draft.Slug = out.Metadata.Slug
		draft.Categories = out.Metadata.Categories
		draft.Countries = out.Metadata.Countries
		draft.DatePublished = out.Metadata.DatePublished
		draft.Overview = out.Summaries.ShortSummary
		draft.Summary = out.Summaries.LongSummary
		draft.SummaryType = model.SummaryTypeGeneric
		return true
	}
}

// applyBackendFailure stamps the draft after a backend error. The error text
// is kept on the record so the operator sees what went wrong.
func (u *ingestUC) applyBackendFailure(s prompt.Schema, draft *model.Draft, res adapter.CompletionResult) {
	msg := fmt.Sprintf("could not use LLM: %s", res.Err)
	switch s {
	case prompt.SchemaShort:
		draft.Overview = msg
		if draft.Slug == "" {
			draft.Slug = Slugify(draft.Title)
		}
	default:
		draft.Overview = "could not use LLM"
		draft.Summary = msg
		draft.SummaryType = model.SummaryTypeGeneric
		draft.Slug = URLToSlug(draft.URL)
	}
}

// applyJSONFailure stamps the draft after the repaired response still failed
// to decode. The model name lands in the text so repeated offenders show up.
func (u *ingestUC) applyJSONFailure(s prompt.Schema, draft *model.Draft) {
	msg := fmt.Sprintf("%s could not generate a valid JSON despite GBNF grammar.", draft.ModelUsed)
	switch s {
	case prompt.SchemaShort:
		draft.Overview = msg
		draft.Slug = Slugify(draft.Title)
	default:
		draft.Overview = "Model could not generate a valid JSON"
		draft.Summary = msg
		draft.SummaryType = model.SummaryTypeGeneric
		draft.Slug = URLToSlug(draft.URL)
	}
}

// mergeValues appends the extras that are not already present, preserving
// order.
func mergeValues(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, v := range base {
		seen[v] = struct{}{}
	}
	for _, v := range extra {
		if _, ok := seen[v]; !ok && v != "" {
			base = append(base, v)
			seen[v] = struct{}{}
		}
	}
	return base
}
