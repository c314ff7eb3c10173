package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Schema kept in lockstep with the prompt schemas and GBNF grammars: adding
// a document field means touching all three.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id               BIGSERIAL PRIMARY KEY,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    is_draft         BOOLEAN NOT NULL DEFAULT TRUE,
    source_url       TEXT UNIQUE,
    slug             TEXT NOT NULL UNIQUE,
    title            TEXT NOT NULL DEFAULT '_',
    publication_date DATE,
    overview         TEXT,
    summary          TEXT,
    summary_type     TEXT,
    comment          TEXT,
    llm              TEXT,
    default_image_id BIGINT
);
CREATE INDEX IF NOT EXISTS idx_documents_title ON documents (title);
CREATE INDEX IF NOT EXISTS idx_documents_publication_date ON documents (publication_date);

CREATE TABLE IF NOT EXISTS doc_authors (
    id     BIGSERIAL PRIMARY KEY,
    doc_id BIGINT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    name   TEXT NOT NULL,
    UNIQUE (doc_id, name)
);

CREATE TABLE IF NOT EXISTS doc_categories (
    id     BIGSERIAL PRIMARY KEY,
    doc_id BIGINT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    name   TEXT NOT NULL,
    UNIQUE (doc_id, name)
);

CREATE TABLE IF NOT EXISTS doc_countries (
    id     BIGSERIAL PRIMARY KEY,
    doc_id BIGINT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    name   TEXT NOT NULL,
    UNIQUE (doc_id, name)
);

CREATE TABLE IF NOT EXISTS doc_images (
    id         BIGSERIAL PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    doc_id     BIGINT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    image_url  TEXT NOT NULL,
    UNIQUE (doc_id, image_url)
);

CREATE TABLE IF NOT EXISTS attempt_logs (
    id         BIGSERIAL PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    job_id     TEXT,
    source_url TEXT NOT NULL,
    llm        TEXT,
    llm_output TEXT,
    success    BOOLEAN NOT NULL DEFAULT FALSE,
    turns      INTEGER
);
CREATE INDEX IF NOT EXISTS idx_attempt_logs_source_url ON attempt_logs (source_url);
CREATE INDEX IF NOT EXISTS idx_attempt_logs_job_id ON attempt_logs (job_id);
`

// Migrate applies the schema idempotently at startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
