// File: internal/infra/logging/logging.go
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/pappitti/semi-agentic-knowledge-base/internal/config"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger configured from config.
// Supports "trace" | "debug" | "info" | "warn" | "error" levels
// and "json" | "console" formats. Sampling can be enabled to reduce noise in prod.
func New(cfg config.LogConfig, dev bool) *zerolog.Logger {
	level, _ := zerolog.ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	var base zerolog.Logger
	if strings.ToLower(cfg.Format) == "console" || dev {
		out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		base = zerolog.New(out).With().Timestamp().Logger()
	} else {
		base = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	if cfg.Sampling && !dev {
		// Simple sampling: keep first 100, then 1 every 100 thereafter.
		sampled := base.Sample(&zerolog.BasicSampler{N: 100})
		return &sampled
	}
	return &base
}

type ctxKey string

const (
	ctxJobID    ctxKey = "job_id"
	ctxURL      ctxKey = "url"
	ctxCategory ctxKey = "category"
)

// WithJob returns a context carrying the job id for log enrichment.
func WithJob(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, ctxJobID, jobID)
}

// WithURL returns a context carrying the document URL under processing.
func WithURL(ctx context.Context, url string) context.Context {
	return context.WithValue(ctx, ctxURL, url)
}

// WithCategory returns a context carrying the processing category.
func WithCategory(ctx context.Context, category string) context.Context {
	return context.WithValue(ctx, ctxCategory, category)
}

// With attaches common context fields such as job_id, url, category.
func With(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	l := base.With()
	if v := ctx.Value(ctxJobID); v != nil {
		l = l.Str("job_id", v.(string))
	}
	if v := ctx.Value(ctxURL); v != nil {
		l = l.Str("url", v.(string))
	}
	if v := ctx.Value(ctxCategory); v != nil {
		l = l.Str("category", v.(string))
	}
	logger := l.Logger()
	return &logger
}

// TraceDuration logs start and end with elapsed duration at TRACE level.
// Usage: defer logging.TraceDuration(logger, "IngestUC.Run")()
func TraceDuration(logger *zerolog.Logger, name string) func() {
	start := time.Now()
	logger.Trace().Str("method", name).Msg("start")
	return func() {
		elapsed := time.Since(start)
		logger.Trace().Str("method", name).Dur("duration", elapsed).Msg("finish")
	}
}
