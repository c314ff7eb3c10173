// File: internal/usecase/submit_uc.go
package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/model"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/ports/repository"
)

// PreviewResult partitions a submitted URL list before a job is launched:
// duplicates are already stored (their last attempt attached), new entries
// are not, and Counts buckets the whole list per processing category.
type PreviewResult struct {
	Counts     map[string]int  `json:"counts"`
	Duplicates []model.URLInfo `json:"duplicates"`
	NewEntries []model.URLInfo `json:"new_entries"`
}

// SubmitUseCase answers the pre-launch questions: which of the pasted URLs
// are already stored, and how did their last pass go.
type SubmitUseCase interface {
	// Preview normalizes a comma-separated URL list and splits it into
	// duplicates and new entries, each augmented with its stored state.
	Preview(ctx context.Context, input string) (*PreviewResult, error)

	// PreviewBySlug resolves a stored document back to its source URL, for
	// resubmitting a single record.
	PreviewBySlug(ctx context.Context, slug string) (*model.URLInfo, error)
}

type submitUC struct {
	docs repository.DocumentRepository
	logs repository.AttemptLogRepository
	log  *zerolog.Logger
}

func NewSubmitUseCase(docs repository.DocumentRepository, logs repository.AttemptLogRepository, logger *zerolog.Logger) SubmitUseCase {
	return &submitUC{docs: docs, logs: logs, log: logger}
}

func (u *submitUC) Preview(ctx context.Context, input string) (*PreviewResult, error) {
	urls := SplitURLList(input)
	if len(urls) == 0 {
		return nil, domain.ErrInvalidArgument
	}

	result := &PreviewResult{
		Counts:     ClassifyURLs(urls).Counts(),
		Duplicates: make([]model.URLInfo, 0),
		NewEntries: make([]model.URLInfo, 0),
	}
	for _, url := range urls {
		info, err := u.describe(ctx, url)
		if err != nil {
			return nil, err
		}
		if info.Exists {
			result.Duplicates = append(result.Duplicates, *info)
		} else {
			result.NewEntries = append(result.NewEntries, *info)
		}
	}
	return result, nil
}

func (u *submitUC) PreviewBySlug(ctx context.Context, slug string) (*model.URLInfo, error) {
	doc, err := u.docs.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return u.describe(ctx, doc.SourceURL)
}

func (u *submitUC) describe(ctx context.Context, url string) (*model.URLInfo, error) {
	info := &model.URLInfo{URL: url}

	doc, err := u.docs.FindBySourceURL(ctx, url)
	switch {
	case err == nil:
		info.Exists = true
		info.Slug = doc.Slug
	case errors.Is(err, domain.ErrNotFound):
		// new URL, nothing more to report
		return info, nil
	default:
		return nil, err
	}

	last, err := u.logs.LastForURL(ctx, url)
	switch {
	case err == nil:
		created := last.CreatedAt
		success := last.Success
		info.LastProcessed = &created
		info.WasSuccess = &success
		info.Output = last.Output
		info.Model = last.Model
	case errors.Is(err, domain.ErrNotFound):
		// stored without a logged attempt (manual entry)
	default:
		return nil, err
	}

	return info, nil
}
