// File: internal/domain/model/snapshot.go
package model

// FailedDoc pairs a failed URL with the slug its record was stored under.
type FailedDoc struct {
	URL  string `json:"url"`
	Slug string `json:"slug"`
}

// FailureSummary counts permanent per-URL failures within one job.
type FailureSummary struct {
	Count int         `json:"count"`
	Docs  []FailedDoc `json:"docs"`
}

// ProgressSnapshot is the last-value broadcast of a running job. Each publish
// overwrites the previous snapshot; no history is kept.
type ProgressSnapshot struct {
	Completed       int            `json:"completed"`
	Total           int            `json:"total"`
	FailedDocs      FailureSummary `json:"failed_docs"`
	Progress        float64        `json:"progress"` // percent complete
	CurrentCategory Category       `json:"current_category,omitempty"`
	CurrentDoc      string         `json:"current_doc,omitempty"`
	ProcessingStep  string         `json:"processing_step"`
}

// DefaultSnapshot is returned to pollers before the worker has published
// anything for the job id.
func DefaultSnapshot() *ProgressSnapshot {
	return &ProgressSnapshot{ProcessingStep: "launching..."}
}
