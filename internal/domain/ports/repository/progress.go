package repository

import (
	"context"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/model"
)

// ProgressRepository is a last-write-wins snapshot store keyed by job id.
// Publish overwrites; Snapshot returns the default placeholder when nothing
// has been published yet. Expiry is the store's policy, not the caller's.
type ProgressRepository interface {
	Publish(ctx context.Context, jobID string, snap *model.ProgressSnapshot) error
	Snapshot(ctx context.Context, jobID string) (*model.ProgressSnapshot, error)
}

// AssetStore persists raw binary assets (thumbnails) and returns the
// relative path they were stored under.
type AssetStore interface {
	Save(data []byte, suggestedName string) (string, error)
}
