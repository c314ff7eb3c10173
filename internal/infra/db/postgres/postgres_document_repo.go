package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/model"
	"github.com/pappitti/semi-agentic-knowledge-base/internal/domain/ports/repository"
)

var _ repository.DocumentRepository = (*documentRepo)(nil)

type documentRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRepo(pool *pgxpool.Pool) *documentRepo {
	return &documentRepo{pool: pool}
}

const docColumns = `id, slug, title, source_url, publication_date, overview, summary, summary_type, llm, is_draft, default_image_id, created_at, updated_at`

func scanDocument(row pgx.Row) (*model.Document, error) {
	var d model.Document
	var sourceURL, overview, summary, summaryType, llm *string
	var pubDate *time.Time
	err := row.Scan(&d.ID, &d.Slug, &d.Title, &sourceURL, &pubDate, &overview, &summary,
		&summaryType, &llm, &d.IsDraft, &d.DefaultImageID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
	}
	if sourceURL != nil {
		d.SourceURL = *sourceURL
	}
	if pubDate != nil {
		d.PublicationDate = *pubDate
	}
	if overview != nil {
		d.Overview = *overview
	}
	if summary != nil {
		d.Summary = *summary
	}
	if summaryType != nil {
		d.SummaryType = *summaryType
	}
	if llm != nil {
		d.Model = *llm
	}
	return &d, nil
}

func (r *documentRepo) FindBySourceURL(ctx context.Context, url string) (*model.Document, error) {
	const q = `SELECT ` + docColumns + ` FROM documents WHERE source_url = $1;`
	return scanDocument(r.pool.QueryRow(ctx, q, url))
}

func (r *documentRepo) FindBySlug(ctx context.Context, slug string) (*model.Document, error) {
	const q = `SELECT ` + docColumns + ` FROM documents WHERE slug = $1;`
	return scanDocument(r.pool.QueryRow(ctx, q, slug))
}

func (r *documentRepo) Upsert(ctx context.Context, fields model.DocumentFields) (*model.Document, error) {
	if fields.Slug == "" {
		return nil, domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO documents (slug, title, source_url, publication_date, overview, summary, summary_type, comment, llm, is_draft, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
ON CONFLICT (source_url) DO UPDATE SET
  slug = EXCLUDED.slug,
  title = EXCLUDED.title,
  publication_date = EXCLUDED.publication_date,
  overview = EXCLUDED.overview,
  summary = EXCLUDED.summary,
  summary_type = EXCLUDED.summary_type,
  llm = EXCLUDED.llm,
  is_draft = EXCLUDED.is_draft,
  updated_at = now()
RETURNING ` + docColumns + `;`

	title := fields.Title
	if title == "" {
		title = "_"
	}
	var comment *string
	if fields.Comment != "" {
		comment = &fields.Comment
	}
	return scanDocument(r.pool.QueryRow(ctx, q,
		fields.Slug, title, fields.SourceURL, fields.PublicationDate,
		fields.Overview, fields.Summary, fields.SummaryType, comment,
		fields.Model, fields.IsDraft))
}

func relatedTable(kind model.RelatedKind) (string, error) {
	switch kind {
	case model.RelatedAuthor:
		return "doc_authors", nil
	case model.RelatedCategory:
		return "doc_categories", nil
	case model.RelatedCountry:
		return "doc_countries", nil
	default:
		return "", domain.ErrInvalidArgument
	}
}

func (r *documentRepo) AppendRelated(ctx context.Context, docID int64, kind model.RelatedKind, value string) error {
	if value == "" {
		return nil
	}
	table, err := relatedTable(kind)
	if err != nil {
		return err
	}
	// (doc_id, name) is unique, so repeats are no-ops.
	q := `INSERT INTO ` + table + ` (doc_id, name) VALUES ($1, $2) ON CONFLICT (doc_id, name) DO NOTHING;`
	_, err = r.pool.Exec(ctx, q, docID, value)
	return err
}

func (r *documentRepo) AttachImage(ctx context.Context, docID int64, relPath string) (int64, error) {
	const q = `
INSERT INTO doc_images (doc_id, image_url) VALUES ($1, $2)
ON CONFLICT (doc_id, image_url) DO UPDATE SET image_url = EXCLUDED.image_url
RETURNING id;`
	var id int64
	if err := r.pool.QueryRow(ctx, q, docID, relPath).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *documentRepo) SetDefaultImage(ctx context.Context, docID, imageID int64) error {
	const q = `UPDATE documents SET default_image_id = $2, updated_at = now() WHERE id = $1;`
	_, err := r.pool.Exec(ctx, q, docID, imageID)
	return err
}

func (r *documentRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM documents WHERE slug = $1);`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, slug).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
