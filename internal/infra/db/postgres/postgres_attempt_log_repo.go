package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/model"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/ports/repository"
)

var _ repository.AttemptLogRepository = (*attemptLogRepo)(nil)

type attemptLogRepo struct {
	pool *pgxpool.Pool
}

func NewAttemptLogRepo(pool *pgxpool.Pool) *attemptLogRepo {
	return &attemptLogRepo{pool: pool}
}

func (r *attemptLogRepo) Save(ctx context.Context, log *model.AttemptLog) error {
	const q = `
INSERT INTO attempt_logs (job_id, source_url, llm, llm_output, success, turns)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at;`
	var turns *int
	if log.Turns > 0 {
		turns = &log.Turns
	}
	return r.pool.QueryRow(ctx, q,
		log.JobID, log.SourceURL, log.Model, log.Output, log.Success, turns).
		Scan(&log.ID, &log.CreatedAt)
}

func (r *attemptLogRepo) LastForURL(ctx context.Context, url string) (*model.AttemptLog, error) {
	const q = `
SELECT id, job_id, source_url, COALESCE(llm, ''), COALESCE(llm_output, ''), success, COALESCE(turns, 0), created_at
FROM attempt_logs
WHERE source_url = $1
ORDER BY created_at DESC
LIMIT 1;`
	var l model.AttemptLog
	err := r.pool.QueryRow(ctx, q, url).Scan(
		&l.ID, &l.JobID, &l.SourceURL, &l.Model, &l.Output, &l.Success, &l.Turns, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
	}
	return &l, nil
}

func (r *attemptLogRepo) SummaryForJob(ctx context.Context, jobID string) (*model.JobSummary, error) {
	const q = `
SELECT
  COUNT(*),
  COUNT(*) FILTER (WHERE NOT success),
  COUNT(*) FILTER (WHERE turns > 0),
  COUNT(*) FILTER (WHERE success AND turns > 1),
  COUNT(*) FILTER (WHERE NOT success AND turns > 1),
  COALESCE(MAX(llm) FILTER (WHERE llm IS NOT NULL AND llm <> ''), '')
FROM attempt_logs
WHERE job_id = $1;`
	var s model.JobSummary
	err := r.pool.QueryRow(ctx, q, jobID).Scan(
		&s.Logged, &s.Failed, &s.ProcessedByLLM, &s.TwoShotSuccess, &s.FailedJSON, &s.Model)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
	}
	return &s, nil
}
