// File: internal/infra/jobs/runner.go
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain"
)

// Status of a launched job. There is no cancellation: callers can only stop
// polling, not abort in-flight work.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Task is one fire-and-forget unit of work keyed by job id.
type Task func(ctx context.Context)

// Handle is the queryable state of a launched job.
type Handle struct {
	JobID      string    `json:"job_id"`
	Status     Status    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Runner launches each job on its own goroutine and keeps a registry of
// handles. Progress details travel through the snapshot store, not through
// the handle; the handle only answers "is it still running".
type Runner struct {
	mu      sync.Mutex
	handles map[string]*Handle
	wg      sync.WaitGroup
	base    context.Context
	log     *zerolog.Logger
}

func NewRunner(base context.Context, logger *zerolog.Logger) *Runner {
	if base == nil {
		base = context.Background()
	}
	return &Runner{
		handles: make(map[string]*Handle),
		base:    base,
		log:     logger,
	}
}

// Launch starts the task and returns immediately. A job id can only run
// once at a time.
func (r *Runner) Launch(jobID string, task Task) error {
	if jobID == "" || task == nil {
		return domain.ErrInvalidArgument
	}

	r.mu.Lock()
	if h, ok := r.handles[jobID]; ok && h.Status == StatusRunning {
		r.mu.Unlock()
		return fmt.Errorf("%w: job %s is running", domain.ErrAlreadyExists, jobID)
	}
	h := &Handle{JobID: jobID, Status: StatusRunning, StartedAt: time.Now()}
	r.handles[jobID] = h
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			status := StatusDone
			if p := recover(); p != nil {
				r.log.Error().Str("job_id", jobID).Interface("panic", p).Msg("job panicked")
				status = StatusFailed
			}
			r.mu.Lock()
			h.Status = status
			h.FinishedAt = time.Now()
			r.mu.Unlock()
		}()
		task(r.base)
	}()

	return nil
}

// Handle returns a copy of the job's handle.
func (r *Runner) Handle(jobID string) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[jobID]
	if !ok {
		return Handle{}, domain.ErrJobNotFound
	}
	return *h, nil
}

// Wait blocks until every launched job has finished. Used on shutdown so
// in-flight batches run to completion.
func (r *Runner) Wait() {
	r.wg.Wait()
}
