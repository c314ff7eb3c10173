// File: internal/usecase/pipeline.go
package usecase

import (
	"context"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/model"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/infra/logging"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/infra/metrics"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/prompt"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/scrape"
)

// Processing step labels published with every snapshot. Pollers display them
// verbatim, so they stay human-readable.
const (
	stepStarting         = "starting..."
	stepScrapingStarted  = "scraping started"
	stepScrapingComplete = "scraping complete"
	stepAwaitingLLM      = "sent to LLM, awaiting response"
	stepLLMReceived      = "LLM response received"
	stepHealing          = "LLM response was invalid, attempting healing, awaiting second response"
	stepSecondInvalid    = "second LLM response was invalid"
	stepAddingDB         = "adding to database"
	stepDocComplete      = "complete"
	stepFinished         = "finished"
)

// jobRun carries the mutable state of one running job: the live snapshot and
// the completion client chosen by the trigger payload.
type jobRun struct {
	jobID string
	call  llmCall
	snap  model.ProgressSnapshot
}

// run is the job body. Strictly sequential: one URL at a time, videos first,
// then abstracts, then everything generic. The generic queue can grow while
// the abstract loop runs (pages whose scrape yielded nothing usable are
// reclassified); the queue is drained to a fixed point.
func (u *ingestUC) run(ctx context.Context, jobID string, req LaunchRequest, set URLSet) {
	ctx = logging.WithJob(ctx, jobID)
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "ingestUC.run")()

	job := &jobRun{
		jobID: jobID,
		call: llmCall{
			client:     u.completions(req.Backend),
			backend:    req.Backend,
			model:      req.Model,
			chatFormat: req.ChatFormat,
		},
		snap: model.ProgressSnapshot{Total: set.Total(), ProcessingStep: stepStarting},
	}
	u.publish(ctx, job)

	genericQueue := append([]string(nil), set.Generic...)

	for _, url := range set.Video {
		u.processVideo(ctx, job, url)
	}
	for _, url := range set.Academic {
		genericQueue = u.processAcademic(ctx, job, url, genericQueue)
	}
	for i := 0; i < len(genericQueue); i++ {
		u.processGeneric(ctx, job, genericQueue[i])
	}

	job.snap.CurrentCategory = ""
	job.snap.CurrentDoc = ""
	job.snap.ProcessingStep = stepFinished
	u.publish(ctx, job)

	log.Info().
		Int("completed", job.snap.Completed).
		Int("failed", job.snap.FailedDocs.Count).
		Msg("ingestion job finished")
}

// publish pushes the current snapshot. Publish errors never stop the job;
// progress is best effort.
func (u *ingestUC) publish(ctx context.Context, job *jobRun) {
	if job.snap.Total > 0 {
		job.snap.Progress = float64(job.snap.Completed) / float64(job.snap.Total) * 100
	}
	if err := u.progress.Publish(ctx, job.jobID, &job.snap); err != nil {
		u.log.Warn().Str("job_id", job.jobID).Err(err).Msg("progress publish failed")
	}
}

func (u *ingestUC) report(ctx context.Context, job *jobRun, category model.Category, url, step string) {
	job.snap.CurrentCategory = category
	job.snap.CurrentDoc = url
	job.snap.ProcessingStep = step
	u.publish(ctx, job)
}

func (u *ingestUC) recordFailure(job *jobRun, url, slug string) {
	job.snap.FailedDocs.Docs = append(job.snap.FailedDocs.Docs, model.FailedDoc{URL: url, Slug: slug})
	job.snap.FailedDocs.Count = len(job.snap.FailedDocs.Docs)
}

// processVideo scrapes a watch page. No completion call: the static markup
// either carries the metadata or it does not.
func (u *ingestUC) processVideo(ctx context.Context, job *jobRun, url string) {
	ctx = logging.WithCategory(logging.WithURL(ctx, url), string(model.CategoryVideo))
	draft := model.NewDraft(url)
	plog := &model.AttemptLog{JobID: job.jobID, SourceURL: url, Success: true}

	u.report(ctx, job, model.CategoryVideo, url, stepScrapingStarted)
	page, failure := u.fetcher.Fetch(ctx, url)
	if failure != nil {
		u.markFetchFailed(draft, plog, failure)
		metrics.ObserveFetchFailure(string(model.CategoryVideo))
	} else {
		u.report(ctx, job, model.CategoryVideo, url, stepScrapingComplete)
		v := scrape.ExtractYouTube(page.Doc)
		draft.Title = v.Title
		draft.Authors = v.Authors
		draft.Categories = v.Categories
		draft.Summary = v.Description
		draft.SummaryType = model.SummaryTypeVideo
		draft.DatePublished = v.DateText
		draft.Slug = Slugify(v.Title)
		draft.Thumbnails = page.Thumbnails
	}

	u.finishDoc(ctx, job, model.CategoryVideo, draft, plog)
}

// processAcademic scrapes an abstract page. A full scrape skips the model
// entirely; a partial one triggers the gap-filling short flow; a scrape that
// yields neither title nor abstract has nothing to prompt with, so the URL is
// requeued into the generic loop (and recorded as a failure of this pass).
func (u *ingestUC) processAcademic(ctx context.Context, job *jobRun, url string, queue []string) []string {
	ctx = logging.WithCategory(logging.WithURL(ctx, url), string(model.CategoryAcademic))
	draft := model.NewDraft(url)
	plog := &model.AttemptLog{JobID: job.jobID, SourceURL: url, Success: true}

	u.report(ctx, job, model.CategoryAcademic, url, stepScrapingStarted)
	page, failure := u.fetcher.Fetch(ctx, url)
	if failure != nil {
		u.markFetchFailed(draft, plog, failure)
		metrics.ObserveFetchFailure(string(model.CategoryAcademic))
		u.finishDoc(ctx, job, model.CategoryAcademic, draft, plog)
		return queue
	}
	u.report(ctx, job, model.CategoryAcademic, url, stepScrapingComplete)

	ext := scrape.ExtractArxiv(page.Doc)
	if ext.Title == "" && ext.Abstract == "" {
		u.recordFailure(job, url, URLToSlug(url))
		job.snap.Completed++
		job.snap.Total++
		u.report(ctx, job, model.CategoryAcademic, url, stepDocComplete)
		metrics.ObserveDocProcessed(string(model.CategoryAcademic), "requeued")
		return append(queue, url)
	}

	draft.Title = ext.Title
	draft.Authors = ext.Authors
	draft.Categories = ext.Categories
	draft.DatePublished = ext.PublicationDate
	draft.Summary = ext.Abstract
	draft.SummaryType = model.SummaryTypeAcademic
	draft.Thumbnails = page.Thumbnails

	if ext.Complete() {
		draft.Slug = Slugify(ext.Title)
	} else {
		input := ext.Title + "\n" + ext.Abstract
		u.extract(ctx, job, model.CategoryAcademic, prompt.SchemaShort, input, draft, plog)
	}

	u.finishDoc(ctx, job, model.CategoryAcademic, draft, plog)
	return queue
}

// processGeneric runs the full long flow: readability text (or PDF text) as
// context, long schema extraction, one healing round on malformed output.
func (u *ingestUC) processGeneric(ctx context.Context, job *jobRun, url string) {
	ctx = logging.WithCategory(logging.WithURL(ctx, url), string(model.CategoryGeneric))
	draft := model.NewDraft(url)
	plog := &model.AttemptLog{JobID: job.jobID, SourceURL: url, Success: true}

	u.report(ctx, job, model.CategoryGeneric, url, stepScrapingStarted)
	page, failure := u.fetcher.Fetch(ctx, url)
	if failure != nil {
		u.markFetchFailed(draft, plog, failure)
		metrics.ObserveFetchFailure(string(model.CategoryGeneric))
		u.finishDoc(ctx, job, model.CategoryGeneric, draft, plog)
		return
	}
	u.report(ctx, job, model.CategoryGeneric, url, stepScrapingComplete)

	if page.Kind == scrape.KindHTML && len(page.Thumbnails) == 0 {
		if img := scrape.FirstImage(ctx, u.fetcher, page); img != nil {
			page.Thumbnails = append(page.Thumbnails, img)
		}
	}
	draft.Thumbnails = page.Thumbnails

	text := scrape.GenericText(page)
	if text == "" {
		draft.Overview = model.PlaceholderParseFailed
		draft.Summary = model.PlaceholderParseFailed
		draft.SummaryType = model.SummaryTypeGeneric
		draft.Slug = URLToSlug(url)
		plog.Success = false
		plog.Output = model.PlaceholderParseFailed
	} else {
		u.extract(ctx, job, model.CategoryGeneric, prompt.SchemaLong, text, draft, plog)
	}

	u.finishDoc(ctx, job, model.CategoryGeneric, draft, plog)
}

// markFetchFailed fills a draft with the fetch-failure placeholder matching
// the failure kind. The record is still persisted so it can be completed by
// hand.
func (u *ingestUC) markFetchFailed(draft *model.Draft, plog *model.AttemptLog, failure *scrape.FetchFailure) {
	placeholder := model.PlaceholderFetchFailed
	if failure.Kind == scrape.FailParse {
		placeholder = model.PlaceholderParseFailed
	}
	draft.Overview = placeholder
	draft.Summary = placeholder
	draft.SummaryType = model.SummaryTypeGeneric
	draft.Slug = URLToSlug(draft.URL)
	plog.Success = false
	plog.Output = failure.Reason
}

// finishDoc persists the draft, updates counters and publishes the per-doc
// terminal step.
func (u *ingestUC) finishDoc(ctx context.Context, job *jobRun, category model.Category, draft *model.Draft, plog *model.AttemptLog) {
	u.report(ctx, job, category, draft.URL, stepAddingDB)
	slug, err := u.persistDraft(ctx, draft, plog)
	if err != nil {
		logging.With(ctx, u.log).Error().Err(err).Msg("persist failed")
		plog.Success = false
	}

	job.snap.Completed++
	outcome := "success"
	if !plog.Success {
		u.recordFailure(job, draft.URL, slug)
		outcome = "failed"
	}
	metrics.ObserveDocProcessed(string(category), outcome)
	u.report(ctx, job, category, draft.URL, stepDocComplete)
}
