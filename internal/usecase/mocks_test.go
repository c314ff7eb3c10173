package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/model"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/ports/adapter"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/scrape"
)

// -----------------------------
// In-memory document repository
// -----------------------------

type memDocumentRepo struct {
	mu       sync.Mutex
	nextID   int64
	byURL    map[string]*model.Document
	slugs    map[string]int64
	related  map[int64]map[model.RelatedKind][]string
	images   map[int64][]string
	defaults map[int64]int64
}

func newMemDocumentRepo() *memDocumentRepo {
	return &memDocumentRepo{
		byURL:    make(map[string]*model.Document),
		slugs:    make(map[string]int64),
		related:  make(map[int64]map[model.RelatedKind][]string),
		images:   make(map[int64][]string),
		defaults: make(map[int64]int64),
	}
}

func (r *memDocumentRepo) FindBySourceURL(_ context.Context, url string) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc, ok := r.byURL[url]; ok {
		cp := *doc
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memDocumentRepo) FindBySlug(_ context.Context, slug string) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.byURL {
		if doc.Slug == slug {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memDocumentRepo) Upsert(_ context.Context, fields model.DocumentFields) (*model.Document, error) {
	if fields.Slug == "" {
		return nil, domain.ErrInvalidArgument
	}
	title := fields.Title
	if title == "" {
		title = "_"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.byURL[fields.SourceURL]
	if !ok {
		r.nextID++
		doc = &model.Document{ID: r.nextID, SourceURL: fields.SourceURL}
		r.byURL[fields.SourceURL] = doc
	}
	doc.Slug = fields.Slug
	doc.Title = title
	doc.PublicationDate = fields.PublicationDate
	doc.Overview = fields.Overview
	doc.Summary = fields.Summary
	doc.SummaryType = fields.SummaryType
	doc.Model = fields.Model
	doc.IsDraft = fields.IsDraft
	r.slugs[fields.Slug] = doc.ID

	cp := *doc
	return &cp, nil
}

func (r *memDocumentRepo) AppendRelated(_ context.Context, docID int64, kind model.RelatedKind, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.related[docID] == nil {
		r.related[docID] = make(map[model.RelatedKind][]string)
	}
	for _, v := range r.related[docID][kind] {
		if v == value {
			return nil
		}
	}
	r.related[docID][kind] = append(r.related[docID][kind], value)
	return nil
}

func (r *memDocumentRepo) AttachImage(_ context.Context, docID int64, relPath string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.images[docID] {
		if p == relPath {
			return int64(i + 1), nil
		}
	}
	r.images[docID] = append(r.images[docID], relPath)
	return int64(len(r.images[docID])), nil
}

func (r *memDocumentRepo) SetDefaultImage(_ context.Context, docID, imageID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaults[docID] = imageID
	return nil
}

func (r *memDocumentRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.slugs[slug]
	return ok, nil
}

// seedSlug marks a slug as taken without creating a document.
func (r *memDocumentRepo) seedSlug(slug string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slugs[slug] = -1
}

// -----------------------------
// In-memory attempt log repository
// -----------------------------

type memAttemptLogRepo struct {
	mu   sync.Mutex
	logs []model.AttemptLog
}

func newMemAttemptLogRepo() *memAttemptLogRepo {
	return &memAttemptLogRepo{}
}

func (r *memAttemptLogRepo) Save(_ context.Context, log *model.AttemptLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.ID = int64(len(r.logs) + 1)
	r.logs = append(r.logs, *log)
	return nil
}

func (r *memAttemptLogRepo) LastForURL(_ context.Context, url string) (*model.AttemptLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.logs) - 1; i >= 0; i-- {
		if r.logs[i].SourceURL == url {
			cp := r.logs[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memAttemptLogRepo) SummaryForJob(_ context.Context, jobID string) (*model.JobSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary := &model.JobSummary{}
	for _, l := range r.logs {
		if l.JobID != jobID {
			continue
		}
		summary.Logged++
		if !l.Success {
			summary.Failed++
		}
		if l.Turns > 0 {
			summary.ProcessedByLLM++
			summary.Model = l.Model
		}
		if l.Turns == 2 && l.Success {
			summary.TwoShotSuccess++
		}
		if l.Turns == 2 && !l.Success {
			summary.FailedJSON++
		}
	}
	return summary, nil
}

// -----------------------------
// In-memory progress repository
// -----------------------------

// memProgressRepo keeps the full publish history so tests can check
// monotonicity, not only the final state.
type memProgressRepo struct {
	mu      sync.Mutex
	history map[string][]model.ProgressSnapshot
}

func newMemProgressRepo() *memProgressRepo {
	return &memProgressRepo{history: make(map[string][]model.ProgressSnapshot)}
}

func (r *memProgressRepo) Publish(_ context.Context, jobID string, snap *model.ProgressSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *snap
	cp.FailedDocs.Docs = append([]model.FailedDoc(nil), snap.FailedDocs.Docs...)
	r.history[jobID] = append(r.history[jobID], cp)
	return nil
}

func (r *memProgressRepo) Snapshot(_ context.Context, jobID string) (*model.ProgressSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hist := r.history[jobID]
	if len(hist) == 0 {
		return model.DefaultSnapshot(), nil
	}
	cp := hist[len(hist)-1]
	return &cp, nil
}

func (r *memProgressRepo) snapshots(jobID string) []model.ProgressSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ProgressSnapshot(nil), r.history[jobID]...)
}

// -----------------------------
// In-memory asset store
// -----------------------------

type memAssetStore struct {
	mu    sync.Mutex
	saved []string
}

func (s *memAssetStore) Save(_ []byte, suggestedName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rel := "images/" + suggestedName
	s.saved = append(s.saved, rel)
	return rel, nil
}

// -----------------------------
// Fake fetcher
// -----------------------------

type fakeFetcher struct {
	pages    map[string]*scrape.Page
	failures map[string]*scrape.FetchFailure
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:    make(map[string]*scrape.Page),
		failures: make(map[string]*scrape.FetchFailure),
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*scrape.Page, *scrape.FetchFailure) {
	if failure, ok := f.failures[url]; ok {
		return nil, failure
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return nil, &scrape.FetchFailure{URL: url, Status: 404, Reason: "http status 404"}
}

func (f *fakeFetcher) FetchImage(_ context.Context, _ string) []byte { return nil }

// htmlPage builds a fetched page from raw markup.
func htmlPage(url, html string) *scrape.Page {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(fmt.Sprintf("bad fixture html: %v", err))
	}
	return &scrape.Page{URL: url, Kind: scrape.KindHTML, Doc: doc, RawHTML: []byte(html)}
}

// -----------------------------
// Scripted completion adapter
// -----------------------------

type scriptedCompletion struct {
	mu        sync.Mutex
	responses []adapter.CompletionResult
	requests  []adapter.CompletionRequest
}

func (c *scriptedCompletion) Complete(_ context.Context, req adapter.CompletionRequest) adapter.CompletionResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if len(c.responses) == 0 {
		return adapter.CompletionResult{Err: "script exhausted", Model: "scripted"}
	}
	res := c.responses[0]
	c.responses = c.responses[1:]
	return res
}

func (c *scriptedCompletion) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// -----------------------------
// Wiring
// -----------------------------

type testEnv struct {
	docs       *memDocumentRepo
	logs       *memAttemptLogRepo
	progress   *memProgressRepo
	assets     *memAssetStore
	fetcher    *fakeFetcher
	completion *scriptedCompletion
	uc         IngestUseCase
}

// newTestEnv wires the ingest use case with in-memory ports and a launch
// function that runs the job synchronously.
func newTestEnv() *testEnv {
	env := &testEnv{
		docs:       newMemDocumentRepo(),
		logs:       newMemAttemptLogRepo(),
		progress:   newMemProgressRepo(),
		assets:     &memAssetStore{},
		fetcher:    newFakeFetcher(),
		completion: &scriptedCompletion{},
	}
	logger := zerolog.Nop()
	env.uc = NewIngestUseCase(
		env.docs,
		env.logs,
		env.progress,
		env.assets,
		env.fetcher,
		func(string) adapter.CompletionAdapter { return env.completion },
		func(_ string, task func(ctx context.Context)) error {
			task(context.Background())
			return nil
		},
		&logger,
	)
	return env
}
