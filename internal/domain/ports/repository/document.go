package repository

import (
	"context"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/model"
)

// DocumentRepository is the persistence gateway for finished documents and
// their satellite entities. Field validation lives behind this boundary; a
// rejected upsert surfaces as an error, never as a panic.
type DocumentRepository interface {
	FindBySourceURL(ctx context.Context, url string) (*model.Document, error)
	FindBySlug(ctx context.Context, slug string) (*model.Document, error)

	// Upsert creates or updates the document keyed by source URL.
	Upsert(ctx context.Context, fields model.DocumentFields) (*model.Document, error)

	// AppendRelated attaches an author/category/country value to a document.
	// Repeating the same (value, document) pair is a no-op.
	AppendRelated(ctx context.Context, docID int64, kind model.RelatedKind, value string) error

	// AttachImage registers a stored asset path for the document and returns
	// the image id. Repeats of the same (path, document) pair are no-ops.
	AttachImage(ctx context.Context, docID int64, relPath string) (int64, error)

	// SetDefaultImage points the document at one of its attached images.
	SetDefaultImage(ctx context.Context, docID, imageID int64) error

	SlugExists(ctx context.Context, slug string) (bool, error)
}

// AttemptLogRepository stores per-URL processing attempts. Logs are append
// only; this core never deletes them.
type AttemptLogRepository interface {
	Save(ctx context.Context, log *model.AttemptLog) error
	LastForURL(ctx context.Context, url string) (*model.AttemptLog, error)
	SummaryForJob(ctx context.Context, jobID string) (*model.JobSummary, error)
}
