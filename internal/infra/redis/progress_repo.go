package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/model"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/ports/repository"
)

var _ repository.ProgressRepository = (*ProgressRepo)(nil)

// ProgressRepo broadcasts per-job progress snapshots through Redis.
// Last write wins; keys expire on the configured TTL so abandoned jobs do
// not accumulate.
type ProgressRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewProgressRepo(client RedisClient, ttl time.Duration) *ProgressRepo {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ProgressRepo{client: client, ttl: ttl}
}

func progressKey(jobID string) string {
	return fmt.Sprintf("progress_task_%s", jobID)
}

func (p *ProgressRepo) Publish(ctx context.Context, jobID string, snap *model.ProgressSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return p.client.Set(ctx, progressKey(jobID), data, p.ttl)
}

// Snapshot returns the latest published snapshot, or the default placeholder
// when the worker has not published anything yet for this job id.
func (p *ProgressRepo) Snapshot(ctx context.Context, jobID string) (*model.ProgressSnapshot, error) {
	data, err := p.client.Get(ctx, progressKey(jobID))
	if err != nil {
		if IsNil(err) {
			return model.DefaultSnapshot(), nil
		}
		return nil, err
	}
	var snap model.ProgressSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
