// File: internal/usecase/ingest_uc.go
package usecase

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/model"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/ports/adapter"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/ports/repository"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/scrape"
)

// PageFetcher is the scrape-side port of the pipeline: one GET per URL with
// a tagged success/failure outcome, plus best-effort image retrieval.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*scrape.Page, *scrape.FetchFailure)
	FetchImage(ctx context.Context, url string) []byte
}

// CompletionFactory builds the completion client for one job from the
// backend tag carried by the trigger payload.
type CompletionFactory func(backend string) adapter.CompletionAdapter

// LaunchFunc hands a job body to the background runner. Returns an error
// when the job id is already running.
type LaunchFunc func(jobID string, task func(ctx context.Context)) error

// LaunchRequest is the validated trigger payload of one ingestion job.
type LaunchRequest struct {
	URLs       []string
	Backend    string
	Model      string
	ChatFormat string
	JobID      string // minted when empty
}

// LaunchResult echoes the accepted job back to the caller.
type LaunchResult struct {
	JobID  string         `json:"task_id"`
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
}

// IngestUseCase runs ingestion jobs and answers progress/summary queries.
type IngestUseCase interface {
	// Launch classifies the URLs, starts the job in the background and
	// returns immediately with the job id.
	Launch(req LaunchRequest) (*LaunchResult, error)
	Progress(ctx context.Context, jobID string) (*model.ProgressSnapshot, error)
	Summary(ctx context.Context, jobID string) (*model.JobSummary, error)
}

type ingestUC struct {
	docs        repository.DocumentRepository
	logs        repository.AttemptLogRepository
	progress    repository.ProgressRepository
	assets      repository.AssetStore
	fetcher     PageFetcher
	completions CompletionFactory
	launch      LaunchFunc
	log         *zerolog.Logger
}

func NewIngestUseCase(
	docs repository.DocumentRepository,
	logs repository.AttemptLogRepository,
	progress repository.ProgressRepository,
	assets repository.AssetStore,
	fetcher PageFetcher,
	completions CompletionFactory,
	launch LaunchFunc,
	logger *zerolog.Logger,
) IngestUseCase {
	return &ingestUC{
		docs:        docs,
		logs:        logs,
		progress:    progress,
		assets:      assets,
		fetcher:     fetcher,
		completions: completions,
		launch:      launch,
		log:         logger,
	}
}

func newJobID() string {
	return ulid.Make().String()
}

func (u *ingestUC) Launch(req LaunchRequest) (*LaunchResult, error) {
	urls := NormalizeURLs(req.URLs)
	set := ClassifyURLs(urls)

	if req.JobID == "" {
		req.JobID = newJobID()
	}

	jobID := req.JobID
	if err := u.launch(jobID, func(ctx context.Context) {
		u.run(ctx, jobID, req, set)
	}); err != nil {
		return nil, err
	}

	return &LaunchResult{JobID: jobID, Total: set.Total(), Counts: set.Counts()}, nil
}

func (u *ingestUC) Progress(ctx context.Context, jobID string) (*model.ProgressSnapshot, error) {
	return u.progress.Snapshot(ctx, jobID)
}

func (u *ingestUC) Summary(ctx context.Context, jobID string) (*model.JobSummary, error) {
	return u.logs.SummaryForJob(ctx, jobID)
}
